package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
	"uribeacon/internal/rotation"
	"uribeacon/pkg/urlcodec"

	"github.com/go-faster/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func rotateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Prints the rotating URLs the beacon advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			atFlag, _ := cmd.Flags().GetString("at")
			count, _ := cmd.Flags().GetInt("count")

			at := time.Now()
			if atFlag != "" {
				t, err := time.Parse(time.RFC3339, atFlag)
				if err != nil {
					return errors.Wrap(err, "could not parse --at")
				}
				at = t
			}

			r, err := rotation.New(a.cfg.Beacon.BaseURL, a.cfg.Beacon.Secret, a.cfg.Beacon.RotationInterval)
			if err != nil {
				return errors.Wrap(err, "could not create rotator")
			}

			data := pterm.TableData{{"Window", "From", "URL", "Payload"}}
			for range max(count, 1) {
				url := r.URLAt(at)
				payload, err := urlcodec.Default.Encode(url)
				if err != nil {
					return errors.Wrapf(err, "could not encode %q", url)
				}
				from := r.NextRotation(at).Add(-r.Interval())
				data = append(data, []string{
					strconv.FormatInt(r.Window(at), 10),
					from.UTC().Format(time.RFC3339),
					url,
					hex.EncodeToString(payload),
				})
				at = r.NextRotation(at)
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Wrap(err, "could not render table")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)

			return err //nolint: wrapcheck
		},
	}

	cmd.Flags().String("at", "", "Instant to compute the URL for, RFC3339 (default now)")
	cmd.Flags().Int("count", 1, "Number of consecutive windows to print")

	return cmd
}
