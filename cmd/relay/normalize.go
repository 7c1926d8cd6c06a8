package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
)

func newNormalizeCmd() *cobra.Command {
	var (
		source     string
		bodyPrefix int
	)
	cmd := &cobra.Command{
		Use:   "normalize <file|->",
		Short: "Print unified events for a captured webhook payload",
		Long: `Reads one webhook delivery (a JSON object) or a batch (a JSON array)
and prints the unified events it normalizes to. Deliveries that carry nothing
to record are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			deliveries, err := decodeDeliveries(raw)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("body-prefix") {
				bodyPrefix = cfg.Ingest.BodyPrefix
			}
			if !cmd.Flags().Changed("source") {
				source = cfg.Ingest.Source
			}

			registry := mapper.NewNormalizerRegistry(mapper.NewJiraEventMapper(mapper.JiraMapperConfig{
				Source:     cfg.Ingest.Source,
				BodyPrefix: bodyPrefix,
				Normalizer: cfg.Ingest.Normalizer,
			}))
			normalizer, err := registry.Get(source)
			if err != nil {
				return err
			}

			events := make([]*domain.UnifiedEvent, 0, len(deliveries))
			for i, d := range deliveries {
				ev := normalizer.Normalize(d)
				if ev == nil {
					slog.Debug("delivery produced no event", "index", i)
					continue
				}
				events = append(events, ev)
			}
			return writeJSON(cmd, events)
		},
	}
	cmd.Flags().StringVar(&source, "source", mapper.SourceJira, "source the payload came from (default INGEST_SOURCE)")
	cmd.Flags().IntVar(&bodyPrefix, "body-prefix", mapper.DefaultBodyPrefix, "UTF-16 units of body text hashed into the fingerprint (default INGEST_BODY_PREFIX)")
	return cmd
}

// decodeDeliveries accepts a single object or an array of objects.
func decodeDeliveries(raw []byte) ([]map[string]any, error) {
	var decoded any
	if err := mapper.DecodePayload(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	switch v := decoded.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("payload must be an object or an array of objects")
	}
}
