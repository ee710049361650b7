package main

import (
	"QuadZK/modules/circuit"
	"QuadZK/modules/verifier"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verifyCircuitFile  string
	verifyProofFile    string
	verifyPublicFile   string
	verifyMinRateInv   int
	verifyMinNbQueries int
)

func init() {
	verifyCmd.Flags().StringVar(&verifyCircuitFile, "circuit-file", "", "The circuit the proof claims to satisfy.")
	verifyCmd.Flags().StringVar(&verifyProofFile, "proof-file", "", "The proof to verify.")
	verifyCmd.Flags().StringVar(&verifyPublicFile, "public-file", "", "The public inputs, one row per parallel copy.")
	verifyCmd.Flags().IntVar(&verifyMinRateInv, "min-rate-inv", verifier.DefaultSecurity.MinRateInv,
		"Lowest inverse Reed-Solomon rate accepted from a proof.")
	verifyCmd.Flags().IntVar(&verifyMinNbQueries, "min-queries", verifier.DefaultSecurity.MinNbQueries,
		"Lowest opened-column count accepted from a proof.")

	verifyCmd.MarkFlagRequired("circuit-file")
	verifyCmd.MarkFlagRequired("proof-file")
	verifyCmd.MarkFlagRequired("public-file")

	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a proof against a circuit and its public inputs",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	c, err := circuit.ReadCircuitFile(verifyCircuitFile)
	if err != nil {
		return err
	}
	zp, err := circuit.ReadZkProofFile(verifyProofFile)
	if err != nil {
		return err
	}
	public, err := circuit.ReadDenseFile(verifyPublicFile)
	if err != nil {
		return err
	}

	sec := verifier.Security{MinRateInv: verifyMinRateInv, MinNbQueries: verifyMinNbQueries}
	if err := verifier.Verify(c, zp, public.V, sec); err != nil {
		return err
	}
	log.Info().Str("file", verifyProofFile).Msg("proof verified")
	return nil
}
