package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"camp-registration-backend/internal/model"
	"camp-registration-backend/internal/store"
)

// readQuotas decodes a YAML list of {origin, max_slots, enabled}.
func readQuotas(path string) ([]model.OriginQuota, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var quotas []model.OriginQuota
	if err := yaml.NewDecoder(f).Decode(&quotas); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(quotas))
	for i, q := range quotas {
		if q.Origin == "" {
			return nil, fmt.Errorf("%s: entry %d has no origin", path, i+1)
		}
		if q.MaxSlots < 0 {
			return nil, fmt.Errorf("%s: %s has negative max_slots", path, q.Origin)
		}
		if _, dup := seen[q.Origin]; dup {
			return nil, fmt.Errorf("%s: %s listed twice", path, q.Origin)
		}
		seen[q.Origin] = struct{}{}
	}
	return quotas, nil
}

func apply(ctx context.Context, s store.Store, out io.Writer, path string) error {
	quotas, err := readQuotas(path)
	if err != nil {
		return err
	}
	if err := s.UpsertQuotas(ctx, quotas); err != nil {
		return err
	}
	fmt.Fprintf(out, "applied %d quotas\n", len(quotas))
	return nil
}

func list(ctx context.Context, s store.Store, out io.Writer) error {
	quotas, err := s.ListQuotas(ctx)
	if err != nil {
		return err
	}
	reserved, err := s.ReservedByOrigin(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORIGIN\tENABLED\tMAX\tRESERVED\tFREE")
	for _, q := range quotas {
		r := reserved[q.Origin]
		fmt.Fprintf(tw, "%s\t%t\t%d\t%d\t%d\n", q.Origin, q.Enabled, q.MaxSlots, r, max(int64(q.MaxSlots)-r, 0))
	}
	return tw.Flush()
}
