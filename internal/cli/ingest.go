package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"resumechat/internal/config"
	"resumechat/internal/domain"
	"resumechat/internal/service"
)

func newIngestCommand(a *app) *cobra.Command {
	var resumePath, profilePath string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Segment the resume and replace the indexed corpus",
		Long: `Reads the resume text and profile JSON, segments the resume into
chunks and atomically replaces everything previously indexed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resumePath == "" {
				resumePath = a.cfg.Ingest.ResumePath
			}
			if profilePath == "" {
				profilePath = a.cfg.Ingest.ProfilePath
			}
			idx, err := a.openIndex()
			if err != nil {
				return err
			}
			defer a.closeIndex(idx)

			report, err := service.NewIngestor(idx).Ingest(a.ctx, resumePath, profilePath)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			cmd.Printf("Ingested %s into %s index: %d chunks (%d headers, %d bullets, %d lines)\n",
				report.Source, a.cfg.Index.Type, report.Total(),
				report.ByType[domain.ChunkHeader], report.ByType[domain.ChunkBullet], report.ByType[domain.ChunkLine])
			if a.cfg.Index.Type == config.IndexMemory {
				cmd.Println("Note: the memory index is not persisted; ask, serve and chat re-ingest on start.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "resume text file (default from config)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "profile JSON file (default from config)")
	return cmd
}
