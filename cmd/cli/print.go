package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/certcat/x509ext/files/pem"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type fileReport struct {
	File         string              `json:"file"`
	Certificates [][]extensionReport `json:"certificates"`
}

func newPrintCmd(log logrus.FieldLogger) *cobra.Command {
	var asJSON bool

	printCmd := &cobra.Command{
		Args: cobra.MinimumNArgs(1),
		Use:  "print [flags] filenames...",
		Long: `Print certificate extensions.

Takes paths to PEM certificates and prints out their extensions.`,
		RunE: func(cmd *cobra.Command, files []string) error {
			return runPrint(cmd, log, files, asJSON)
		},
	}
	printCmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return printCmd
}

func runPrint(cmd *cobra.Command, log logrus.FieldLogger, files []string, asJSON bool) error {
	out := cmd.OutOrStdout()
	var reports []fileReport

	for _, file := range files {
		read, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		certs, err := pem.LoadAll(read)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		log.WithFields(logrus.Fields{
			"file":         file,
			"certificates": len(certs),
		}).Debug("Loaded certificates")

		if asJSON {
			r := fileReport{File: file, Certificates: make([][]extensionReport, 0, len(certs))}
			for _, extensions := range certs {
				cert := make([]extensionReport, 0, len(extensions))
				for _, ext := range extensions {
					cert = append(cert, report(log, ext))
				}
				r.Certificates = append(r.Certificates, cert)
			}
			reports = append(reports, r)
			continue
		}

		for i, extensions := range certs {
			fmt.Fprintf(out, "%s: certificate %d\n", file, i)
			for _, ext := range extensions {
				fmt.Fprintln(out, describe(log, ext))
			}
		}
	}

	if !asJSON {
		return nil
	}
	d, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(d))
	return nil
}
