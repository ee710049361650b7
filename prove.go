package main

import (
	"os"

	"QuadZK/modules/circuit"
	"QuadZK/modules/prover"
	"QuadZK/modules/rng"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	proveCircuitFile string
	proveWitnessFile string
	proveOutputFile  string
	proveRateInv     int
	proveNbQueries   int
	proveSeed        uint64
)

func init() {
	proveCmd.Flags().StringVar(&proveCircuitFile, "circuit-file", "", "The circuit to prove.")
	proveCmd.Flags().StringVar(&proveWitnessFile, "witness-file", "", "The full witness, one row per parallel copy.")
	proveCmd.Flags().StringVar(&proveOutputFile, "proof-file", "", "The proof output file.")
	proveCmd.Flags().IntVar(&proveRateInv, "rate-inv", 4, "Inverse Reed-Solomon rate of the commitment.")
	proveCmd.Flags().IntVar(&proveNbQueries, "queries", 64, "Number of commitment columns opened per proof.")
	proveCmd.Flags().Uint64Var(&proveSeed, "seed", 0, "Deterministic randomness seed; 0 uses system randomness.")

	proveCmd.MarkFlagRequired("circuit-file")
	proveCmd.MarkFlagRequired("witness-file")
	proveCmd.MarkFlagRequired("proof-file")

	rootCmd.AddCommand(proveCmd)
}

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Generate a proof that a witness satisfies a circuit",
	Args:  cobra.NoArgs,
	RunE:  runProve,
}

func runProve(cmd *cobra.Command, args []string) error {
	c, err := circuit.ReadCircuitFile(proveCircuitFile)
	if err != nil {
		return err
	}
	inputs, err := circuit.ReadDenseFile(proveWitnessFile)
	if err != nil {
		return err
	}
	log.Info().Msg(c.Stats())

	params, err := prover.DefaultParams(c, proveRateInv, proveNbQueries)
	if err != nil {
		return err
	}

	src := rng.NewCrypto()
	if proveSeed != 0 {
		src = rng.NewSeeded(proveSeed)
	}

	st, err := prover.Commit(c, inputs, params, src)
	if err != nil {
		return err
	}
	log.Info().
		Int("committed", st.Layout.Total).
		Int("rowWidth", params.Width).
		Msg("witness committed")

	bar := progressbar.Default(int64(c.NbLayers()), "proving layers")
	st.Progress = func(done, total int) {
		bar.Set(done)
	}

	zk, err := prover.Prove(c, st)
	if err != nil {
		return err
	}
	bar.Finish()

	f, err := os.Create(proveOutputFile)
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := zk.WriteTo(f)
	if err != nil {
		return err
	}
	log.Info().Int64("bytes", n).Str("file", proveOutputFile).Msg("proof written")
	return nil
}
