package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/certcat/x509ext/der"
	"github.com/certcat/x509ext/x509ext"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newNoCheckCmd(log logrus.FieldLogger) *cobra.Command {
	var critical bool

	noCheckCmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Use:   "nocheck [flags]",
		Short: "Print the DER encoding of an OCSPNoCheck extension as hex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out der.OutputStream
			if err := x509ext.NewOCSPNoCheckExtension(critical).Encode(&out); err != nil {
				return err
			}
			encoded, err := out.Bytes()
			if err != nil {
				return err
			}
			log.WithField("critical", critical).Debug("Encoded OCSPNoCheck")
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encoded))
			return nil
		},
	}
	noCheckCmd.Flags().BoolVarP(&critical, "critical", "c", false, "Mark the extension critical")
	return noCheckCmd
}
