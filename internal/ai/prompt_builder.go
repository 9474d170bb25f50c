package ai

import (
	"strconv"
	"strings"
)

// BuildUserPrompt formats the input block described in the system prompt.
func BuildUserPrompt(taskTitle string, maxSubtasks int) string {
	var b strings.Builder

	b.WriteString("task_title: ")
	b.WriteString(strings.TrimSpace(taskTitle))
	b.WriteString("\n")

	b.WriteString("max_subtasks: ")
	b.WriteString(strconv.Itoa(maxSubtasks))
	b.WriteString("\n")

	return b.String()
}
