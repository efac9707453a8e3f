package services

// NoResponseReply is returned to the caller when the upstream answer holds no
// usable text.
const NoResponseReply = "❌ No response."

// firstCandidateText walks candidates[0].content.parts[0].text. Every step
// yields ok=false on a missing key, an empty list, or a value of the wrong
// type, so a malformed body can never panic.
func firstCandidateText(body interface{}) (string, bool) {
	candidate, ok := firstElem(field(body, "candidates"))
	if !ok {
		return "", false
	}
	content, ok := field(candidate, "content")
	if !ok {
		return "", false
	}
	part, ok := firstElem(field(content, "parts"))
	if !ok {
		return "", false
	}
	text, ok := field(part, "text")
	if !ok {
		return "", false
	}
	s, ok := text.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func field(v interface{}, key string) (interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	val, ok := obj[key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

func firstElem(v interface{}, ok bool) (interface{}, bool) {
	if !ok {
		return nil, false
	}
	list, isList := v.([]interface{})
	if !isList || len(list) == 0 || list[0] == nil {
		return nil, false
	}
	return list[0], true
}

// replyText extracts the reply from a decoded upstream body, falling back to
// NoResponseReply.
func replyText(body interface{}) string {
	if s, ok := firstCandidateText(body); ok {
		return s
	}
	return NoResponseReply
}
