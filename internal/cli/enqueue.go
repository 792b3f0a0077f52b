package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Enqueuer ставит импорт в очередь. Реализация: *mq.Publisher.
type Enqueuer interface {
	PublishImportRequested(ctx context.Context, filename string) (string, error)
}

// DialFunc открывает соединение с брокером.
// Возвращает Enqueuer и функцию закрытия соединения.
type DialFunc func() (Enqueuer, func() error, error)

// enqueueResult — строка вывода enqueue.
type enqueueResult struct {
	Filename  string `json:"filename"`
	MessageID string `json:"message_id"`
}

// NewEnqueueCmd создаёт команду enqueue.
func NewEnqueueCmd(dial DialFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue FILENAME...",
		Short: "Request import of files from the file service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			enqueuer, closeFn, err := dial()
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer closeFn()

			results := make([]enqueueResult, 0, len(args))
			for _, filename := range args {
				if filename == "" {
					return fmt.Errorf("empty filename")
				}

				msgID, err := enqueuer.PublishImportRequested(cmd.Context(), filename)
				if err != nil {
					return fmt.Errorf("enqueue %s: %w", filename, err)
				}
				results = append(results, enqueueResult{Filename: filename, MessageID: msgID})
			}

			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Filename, r.MessageID}
			}
			out.Print([]string{"FILENAME", "MESSAGE_ID"}, rows, results)
			out.Success(fmt.Sprintf("Enqueued %d import(s)", len(results)))
			return nil
		},
	}
}
