package pipeline

import (
	"strings"

	"github.com/hostling/guestgate/internal/property"
	"github.com/hostling/guestgate/internal/topic"
)

// systemPrompt assembles the instruction block for one request. Every
// section header here is one the output filter's leak signatures watch
// for: if the model echoes any of them back, the response is discarded.
func systemPrompt(rec *property.Record, ctx topic.Context, propertyInfo string) string {
	var b strings.Builder
	b.WriteString("You are a helpful concierge for the vacation rental ")
	b.WriteString(rec.Name)
	b.WriteString(".\n\nASSISTANT RULES:\n")
	b.WriteString("Answer the guest's question using only the property information below. ")
	b.WriteString("If the information needed is not present, say you don't have it and suggest contacting the host. ")
	b.WriteString("Never invent codes, passwords, or times. Keep answers short and friendly.\n\n")

	b.WriteString("Current topic: ")
	b.WriteString(string(ctx))
	b.WriteString("\n\nPROPERTY INFORMATION:\n")
	b.WriteString(propertyInfo)
	return b.String()
}
