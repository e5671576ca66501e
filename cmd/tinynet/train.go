package main

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/config"
	"github.com/tinynet-ml/tinynet/internal/dataset"
	"github.com/tinynet-ml/tinynet/internal/demo"
	"github.com/tinynet-ml/tinynet/internal/network"
)

// runFlags are the hyperparameter flags shared by the train subcommands.
type runFlags struct {
	epochs int
	lr     float64
	seed   int64
	out    string
}

func (f *runFlags) register(cmd *cobra.Command, run config.RunConfig, out string) {
	cmd.Flags().IntVar(&f.epochs, "epochs", run.Epochs, "number of training epochs")
	cmd.Flags().Float64Var(&f.lr, "lr", run.LearningRate, "learning rate")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "weight initialization seed")
	cmd.Flags().StringVar(&f.out, "out", out, "model archive to write (.npz or .safetensors)")
}

// apply overrides the configured values with the flags the user set
// explicitly and validates the result, so a flag cannot bypass the checks
// the config file goes through.
func (f *runFlags) apply(cmd *cobra.Command, section string, run config.RunConfig, out string, seed int64) (config.RunConfig, string, int64, error) {
	if cmd.Flags().Changed("seed") {
		seed = f.seed
	}
	if cmd.Flags().Changed("epochs") {
		run.Epochs = f.epochs
	}
	if cmd.Flags().Changed("lr") {
		run.LearningRate = f.lr
	}
	if cmd.Flags().Changed("out") {
		out = f.out
	}

	if err := run.Validate(section); err != nil {
		return run, out, seed, err
	}
	if out == "" {
		return run, out, seed, errors.New("--out must not be empty")
	}
	return run, out, seed, nil
}

func newTrainCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a demo network and save it",
	}
	cmd.AddCommand(newTrainXORCmd(c), newTrainAutoencoderCmd(c))
	return cmd
}

func newTrainXORCmd(c *cli) *cobra.Command {
	var flags runFlags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "xor",
		Short: "Train the 2-4-1 tanh XOR network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, out, seed, err := flags.apply(cmd, "training.xor", c.cfg.Training.XOR, c.cfg.Models.XOR, c.cfg.Models.Seed)
			if err != nil {
				return err
			}

			net, err := demo.NewXOR(rand.New(rand.NewSource(seed)), //nolint:gosec // weight initialization is not security-critical
				network.WithLogger(c.logger),
				network.WithReportEvery(run.ReportEvery),
			)
			if err != nil {
				return err
			}

			x, y := dataset.XOR(dataset.Symmetric)
			c.logger.Info("training xor",
				zap.Int("epochs", run.Epochs),
				zap.Float64("learning_rate", run.LearningRate),
			)
			if err := net.Train(x, y, run.Epochs, run.LearningRate); err != nil {
				return errors.Wrap(err, "train xor")
			}
			if err := net.Save(out); err != nil {
				return err
			}

			outputs, err := net.Predict(x)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, o := range outputs {
				fmt.Fprintf(w, "%v -> %.4f\n", mat.Formatted(x[i].T()), o.AtVec(0))
			}
			fmt.Fprintf(w, "model saved to %s\n", out)
			return nil
		},
	}

	flags.register(cmd, defaults.Training.XOR, defaults.Models.XOR)
	return cmd
}

func newTrainAutoencoderCmd(c *cli) *cobra.Command {
	var (
		flags   runFlags
		images  string
		samples int
	)
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "autoencoder",
		Short: "Train the 784-128-64-128-784 autoencoder on IDX images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run := c.cfg.Training.Autoencoder
			if cmd.Flags().Changed("samples") {
				run.Samples = samples
			}
			run, out, seed, err := flags.apply(cmd, "training.autoencoder", run, c.cfg.Models.Autoencoder, c.cfg.Models.Seed)
			if err != nil {
				return err
			}

			x, err := dataset.LoadImages(images, run.Samples)
			if err != nil {
				return err
			}
			if len(x) > 0 && x[0].Len() != demo.ImageSize {
				return errors.Errorf("images have %d pixels, want %d", x[0].Len(), demo.ImageSize)
			}

			net, err := demo.NewAutoencoder(rand.New(rand.NewSource(seed)), //nolint:gosec // weight initialization is not security-critical
				network.WithLogger(c.logger),
				network.WithReportEvery(run.ReportEvery),
			)
			if err != nil {
				return err
			}

			c.logger.Info("training autoencoder",
				zap.Int("samples", len(x)),
				zap.Int("epochs", run.Epochs),
				zap.Float64("learning_rate", run.LearningRate),
			)
			// An autoencoder reconstructs its own input.
			if err := net.Train(x, x, run.Epochs, run.LearningRate); err != nil {
				return errors.Wrap(err, "train autoencoder")
			}
			if err := net.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model saved to %s\n", out)
			return nil
		},
	}

	flags.register(cmd, defaults.Training.Autoencoder, defaults.Models.Autoencoder)
	cmd.Flags().StringVar(&images, "images", "", "IDX image file, optionally gzip-compressed (train-images-idx3-ubyte)")
	cmd.Flags().IntVar(&samples, "samples", defaults.Training.Autoencoder.Samples, "number of images to train on (0 = all)")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}
