package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"resumechat/internal/domain"
	"resumechat/internal/logger"
	"resumechat/internal/service"
	"resumechat/internal/summarizer"
	"resumechat/internal/tui"
)

const highlightCount = 3

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat about the resume in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			idx, report, err := a.prepare()
			if err != nil {
				return err
			}
			defer a.closeIndex(idx)

			m := tui.New(a.ctx, a.chatService(idx, nil), a.highlights(report))
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// highlights summarizes the ingested chunks, reading the inputs when nothing
// was ingested in this process.
func (a *app) highlights(report service.IngestReport) string {
	chunks := report.Chunks
	if len(chunks) == 0 {
		corpus, err := service.LoadCorpus(a.cfg.Ingest.ResumePath, a.cfg.Ingest.ProfilePath)
		if err != nil {
			logger.FromContext(a.ctx).Debug("No highlights", "error", err)
			return ""
		}
		chunks = corpus.Chunks
	}
	return summarizer.NewFrequencySummarizer(highlightCount).Summarize(bulletsFirst(chunks))
}

// bulletsFirst drops plain lines when the résumé has bullets.
func bulletsFirst(chunks []domain.Chunk) []domain.Chunk {
	var bullets []domain.Chunk
	for _, c := range chunks {
		if c.Type == domain.ChunkBullet {
			bullets = append(bullets, c)
		}
	}
	if len(bullets) == 0 {
		return chunks
	}
	return bullets
}
