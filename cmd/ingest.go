package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mediamail/internal/firehose"
	"mediamail/internal/redisclient"

	"github.com/spf13/cobra"
)

var ingestFile string

// ingestCmd reads raw platform messages as JSON lines and writes the
// normalized records into the search index. Useful for backfills and for
// replaying captured firehose samples.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index raw messages from a JSONL file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := buildStore(cfg, rdb)
		norm := firehose.NewNormalizer("import", cfg.Firehose, buildClassifier(cfg))

		var in io.Reader = os.Stdin
		if ingestFile != "" && ingestFile != "-" {
			f, err := os.Open(ingestFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		line, stored, skipped := 0, 0, 0
		for sc.Scan() {
			line++
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				continue
			}
			var raw firehose.RawMessage
			if err := json.Unmarshal([]byte(text), &raw); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			rec, ok := norm.Normalize(ctx, raw)
			if !ok {
				skipped++
				continue
			}
			if _, err := store.Put(ctx, rec); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			stored++
		}
		if err := sc.Err(); err != nil {
			return err
		}
		fmt.Printf("indexed %d records, skipped %d\n", stored, skipped)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "JSONL input file (default stdin)")
	rootCmd.AddCommand(ingestCmd)
}
