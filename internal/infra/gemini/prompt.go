package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"rhel-assessment-service/internal/domain"
)

// BuildPrompt renders the generation instructions for req.
func BuildPrompt(req domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("Generate a professional technical interview quiz for a RHEL 10 Administrator.\n")
	fmt.Fprintf(&b, "Total questions: %d.\n\n", req.Count)
	b.WriteString("STRICT REQUIREMENT: Use ONLY the following modules and additional topics provided in the training requirements document:\n")
	for _, topic := range req.Topics {
		b.WriteString(topic)
		b.WriteByte('\n')
	}
	b.WriteString(`
CRITICAL CONSTRAINTS:
1. EXCLUDE Module 16 (Analyze servers and get support).
2. Module 5 MUST cover vim shortcuts.
3. Module 7 MUST cover immutability bits and sticky bits.
4. Include scenario-based questions for these specific troubleshooting tools: top, atop, iostat, sar, iotop, iftop, iperf, lsof, ethtool.
5. Include questions about these critical files: resolv.conf, hosts, fstab, mnttab, and cron-related files.
6. Include common troubleshooting tasks like grep/egrep usage, for loops in bash, and restarting services.
7. Every question has exactly 4 options and, for each option, a simulated terminal output of running it (optionSimulations, same order).
8. The module field MUST be copied verbatim from the list above.

Format each question as a real-world scenario where the admin must solve a problem based on these specific topics.
`)
	return b.String()
}

func questionSchema() *genai.Schema {
	difficulties := make([]string, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		difficulties = append(difficulties, string(d))
	}
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	strList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: str()}
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":                str(),
				"module":            str(),
				"topic":             str(),
				"scenario":          str(),
				"question":          str(),
				"options":           strList(),
				"optionSimulations": strList(),
				"correctAnswer": {
					Type:        genai.TypeInteger,
					Description: "Index of correct option (0-3)",
				},
				"explanation": str(),
				"difficulty":  {Type: genai.TypeString, Enum: difficulties},
			},
			Required: []string{
				"id", "module", "topic", "scenario", "question", "options",
				"optionSimulations", "correctAnswer", "explanation", "difficulty",
			},
		},
	}
}
