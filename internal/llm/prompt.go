package llm

import (
	"strings"
)

// SystemPrompt describes the record shape the normalizer accepts. Keep it in
// sync with ClassSchema and NormalizeResponse.
var SystemPrompt = strings.Join([]string{
	"You are a schedule parser. Extract every class session from the schedule you are given.",
	"For each class return an object with these fields:",
	"- course_name (required): the course title.",
	"- course_code (optional): e.g. \"CS101\".",
	"- professor (optional): instructor name.",
	"- room_number (optional): e.g. \"301\".",
	"- building (optional): building name.",
	"- floor (optional): derive it from the room number when obvious, e.g. room \"301\" is floor \"3\".",
	"- start_time (required): 24-hour HH:MM, e.g. \"09:00\" or \"14:30\".",
	"- end_time (required): 24-hour HH:MM.",
	"- days_of_week (required): array of full English weekday names, e.g. [\"Monday\", \"Wednesday\"].",
	"- notes (optional): anything else relevant, such as section or lab.",
	"Omit optional fields that are not present. Never output null.",
	"Return ONLY a valid JSON array of class objects. No markdown, no explanations.",
}, "\n")

// BuildUserPrompt packages the document for one model call. The PDF itself is
// attached separately by the provider client.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if req.HasPDF() {
		b.WriteString("Parse the attached PDF schedule and return a JSON array of classes.")
	} else {
		b.WriteString("Parse this schedule and return a JSON array of classes.")
	}
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("\nFile name: ")
		b.WriteString(name)
	}
	if content := strings.TrimSpace(req.Content); content != "" {
		b.WriteString("\n\n")
		b.WriteString(content)
	}
	return b.String()
}
