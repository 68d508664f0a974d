package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/certcat/x509ext/der"
	"github.com/certcat/x509ext/x509ext"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newDecodeCmd(log logrus.FieldLogger) *cobra.Command {
	return &cobra.Command{
		Args:  cobra.ExactArgs(1),
		Use:   "decode HEX",
		Short: "Decode a single hex encoded Extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := hex.DecodeString(strings.ReplaceAll(args[0], ":", ""))
			if err != nil {
				return fmt.Errorf("decoding hex: %w", err)
			}
			log.WithField("length", len(input)).Debug("Decoding extension")

			v, err := der.Parse(input)
			if err != nil {
				return err
			}
			ext, err := x509ext.ParseExtension(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(log, ext))
			return nil
		},
	}
}
