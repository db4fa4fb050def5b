package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

const sheetName = "Analysis"

var xlsxHeader = []any{
	"Rank", "Repository", "URL", "Language", "Stars", "Fork",
	"Score", "Relevance", "Reasoning",
	"Problem Statement", "Models", "Tools", "RAG", "Agents", "Fine-tuning", "Embeddings", "Vector DB",
}

// WriteXLSX exports ranked results to a spreadsheet at path, one row each.
func WriteXLSX(path string, ranked []models.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range ranked {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(i+1, r)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func xlsxRow(rank int, r models.Result) []any {
	a := r.Analysis
	row := []any{
		rank, r.RepoName, r.RepoURL, orNone(r.Language), r.Stars, r.IsFork,
		a.Score, a.Relevance, a.Reasoning,
	}
	if d := a.Details; d != nil {
		row = append(row,
			d.ProblemStatement, d.ModelsUsed, d.ToolsUsed,
			d.UsesRAG, d.UsesAgents, d.UsesFineTuning, d.UsesEmbeddings, d.UsesVectorDB,
		)
	}
	return row
}
