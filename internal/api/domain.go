package api

import (
	"github.com/JaimeStill/auditmarks/internal/marks"
	"github.com/JaimeStill/auditmarks/internal/stamp"
	"github.com/JaimeStill/auditmarks/internal/workpapers"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Marks      marks.System
	Stamper    *stamp.Stamper
	WorkPapers workpapers.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	marksSystem := marks.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
		marks.Options{
			Import: marks.ImportOptions{
				MaxSize:    runtime.Marks.MaxImportSizeBytes(),
				Extensions: runtime.Marks.Extensions,
			},
			BatchSize: runtime.Marks.BatchSize,
		},
		marks.NewMetrics(runtime.Registry),
	)

	stamper := stamp.New(
		marksSystem,
		stamp.Style{
			Title:     runtime.Marks.FooterTitle,
			Color:     runtime.Marks.AccentColor,
			Size:      runtime.Marks.FontSize,
			TitleFill: runtime.Marks.TitleFill,
			MarkFill:  runtime.Marks.MarkFill,
			Gap:       runtime.Marks.TrailingGap,
		},
		runtime.Logger,
		stamp.NewMetrics(runtime.Registry),
	)

	workPapersSystem := workpapers.New(
		runtime.Database.Connection(),
		runtime.Storage,
		stamper,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Marks:      marksSystem,
		Stamper:    stamper,
		WorkPapers: workPapersSystem,
	}
}
