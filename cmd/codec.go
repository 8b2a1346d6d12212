package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"uribeacon/pkg/eddystone"
	"uribeacon/pkg/urlcodec"

	"github.com/go-faster/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// renderTokens prints tokens as a table: one row per payload unit.
func renderTokens(w io.Writer, tokens []urlcodec.Token) error {
	data := pterm.TableData{{"Offset", "Raw", "Kind", "Text"}}
	for _, t := range tokens {
		data = append(data, []string{
			strconv.Itoa(t.Offset),
			hex.EncodeToString(t.Raw),
			string(t.Kind),
			strconv.Quote(t.Text),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "could not render tokens")
	}
	_, err = fmt.Fprintln(w, table)

	return err //nolint: wrapcheck
}

// parseHex accepts hex with optional spaces, colons and a 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex")
	}

	return b, nil
}

func encodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <url>",
		Short: "Encodes a URL into a beacon payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withFrame, _ := cmd.Flags().GetBool("frame")
			txPower, _ := cmd.Flags().GetInt8("tx-power")
			out := cmd.OutOrStdout()

			payload, err := urlcodec.Default.Encode(args[0])
			if err != nil {
				return errors.Wrap(err, "could not encode")
			}
			fmt.Fprintf(out, "Payload: %s (%d bytes)\n", hex.EncodeToString(payload), len(payload))

			if withFrame {
				frame, err := eddystone.URLFrameFromPayload(payload, txPower)
				if err != nil {
					return errors.Wrap(err, "could not build frame")
				}
				fmt.Fprintf(out, "Frame:   %s\n", hex.EncodeToString(frame))
			}

			tokens, err := urlcodec.Default.Tokenize(payload)
			if err != nil {
				return errors.Wrap(err, "could not tokenize")
			}

			return renderTokens(out, tokens)
		},
	}

	cmd.Flags().Bool("frame", false, "Also print the Eddystone-URL frame")
	cmd.Flags().Int8("tx-power", eddystone.DefaultTxPower, "Calibrated tx power at 0 m in dBm, used with --frame")

	return cmd
}

func decodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decodes a beacon payload, frame or advertising data into a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asFrame, _ := cmd.Flags().GetBool("frame")
			asAdv, _ := cmd.Flags().GetBool("adv")
			out := cmd.OutOrStdout()

			b, err := parseHex(args[0])
			if err != nil {
				return err
			}

			payload := b
			switch {
			case asAdv:
				f, err := eddystone.ParseAdvertisingData(urlcodec.Default, b)
				if err != nil {
					return errors.Wrap(err, "could not parse advertising data")
				}
				fmt.Fprintf(out, "TxPower: %d dBm\n", f.TxPower)
				payload = f.Payload
			case asFrame:
				f, err := eddystone.DecodeURLFrame(urlcodec.Default, b)
				if err != nil {
					return errors.Wrap(err, "could not decode frame")
				}
				fmt.Fprintf(out, "TxPower: %d dBm\n", f.TxPower)
				payload = f.Payload
			}

			tokens, err := urlcodec.Default.Tokenize(payload)
			if err != nil {
				return errors.Wrap(err, "could not decode")
			}
			var url strings.Builder
			for _, t := range tokens {
				url.WriteString(t.Text)
			}
			fmt.Fprintf(out, "URL:     %s\n", url.String())

			return renderTokens(out, tokens)
		},
	}

	cmd.Flags().Bool("frame", false, "Input is an Eddystone-URL frame")
	cmd.Flags().Bool("adv", false, "Input is BLE advertising data")
	cmd.MarkFlagsMutuallyExclusive("frame", "adv")

	return cmd
}
