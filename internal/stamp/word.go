package stamp

import (
	"log/slog"

	"github.com/JaimeStill/auditmarks/internal/marks"
	"github.com/JaimeStill/auditmarks/pkg/docx"
)

// stampWord appends a spacer, the title and one paragraph per mark to the
// default footer of each section. Sections sharing a footer part are
// stamped once. A section whose footer cannot be edited is skipped.
func (s *Stamper) stampWord(data []byte, matched []marks.Mark, logger *slog.Logger) ([]byte, error) {
	doc, err := docx.Open(data)
	if err != nil {
		return nil, err
	}

	stamped := make(map[string]bool)
	for _, section := range doc.Sections() {
		footer, err := section.Footer()
		if err != nil {
			logger.Warn("section footer skipped", "section", section.Index()+1, "error", err)
			continue
		}
		if stamped[footer.Part()] {
			continue
		}
		stamped[footer.Part()] = true

		s.writeFooter(footer, matched)
		logger.Debug("marks added to footer", "section", section.Index()+1, "part", footer.Part(), "count", len(matched))
	}

	if len(stamped) == 0 {
		return nil, ErrNoFooter
	}
	return doc.Bytes()
}

func (s *Stamper) writeFooter(footer *docx.Footer, matched []marks.Mark) {
	footer.AddParagraph()

	footer.AddParagraph().AddRun(s.run(s.style.Title))
	for _, m := range matched {
		footer.AddParagraph().AddRun(s.run(m.Label()))
	}
}

func (s *Stamper) run(text string) docx.Run {
	return docx.Run{
		Text:  text,
		Bold:  true,
		Size:  s.style.Size,
		Color: s.style.Color,
	}
}
