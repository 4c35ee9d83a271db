package cmd

import (
	"github.com/spf13/cobra"
	"github.com/xhad/reelindex/internal/server"
	"github.com/xhad/reelindex/internal/types"
)

var (
	serveAddr     string
	serveNoAnswer bool
	serveStream   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over a websocket",
	Long: `Serve answers {"type":"query","content":"..."} messages on /ws with the matching
entries and, unless --no-answer is set, a chat answer. /health returns OK.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sections := []string{"embedding", "store"}
		if !serveNoAnswer {
			sections = append(sections, "llm")
		}
		if err := validate(sections...); err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx := cmd.Context()

		collection, err := openCollection(ctx)
		if err != nil {
			return err
		}
		defer collection.Close()

		var answerer types.Answerer
		if !serveNoAnswer {
			chatEngine, err := newChatEngine()
			if err != nil {
				return err
			}
			answerer = chatEngine
		}

		return server.NewWSServer(collection, answerer, server.Config{
			Addr:        cfg.Server.Addr,
			SearchLimit: cfg.Chat.SearchLimit,
			Streaming:   serveStream,
		}, logger).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.addr)")
	serveCmd.Flags().BoolVar(&serveNoAnswer, "no-answer", false, "Only return matches")
	serveCmd.Flags().BoolVar(&serveStream, "stream", true, "Stream answers")

	rootCmd.AddCommand(serveCmd)
}
