package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tsuchida/bunrui-go/cmd/analyze"
	"github.com/tsuchida/bunrui-go/cmd/serve"
	"github.com/tsuchida/bunrui-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bunrui-go",
		Short: "bunrui-go image classification service",
		Long:  "bunrui-go classifies uploaded images with a pretrained CNN and serves a searchable analysis history.",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		serve.Command(settings),
		analyze.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.ModelPath, "model", viper.GetString("classifier.modelpath"), "Path to the TensorFlow Lite model file")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.LabelPath, "labels", viper.GetString("classifier.labelpath"), "Path to the class index file")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.LocalePath, "locale-labels", viper.GetString("classifier.localepath"), "Path to the localized class index file")
	rootCmd.PersistentFlags().IntVar(&settings.Classifier.TopK, "topk", viper.GetInt("classifier.topk"), "Number of ranked predictions to report")
	rootCmd.PersistentFlags().IntVarP(&settings.Classifier.Threads, "threads", "j", viper.GetInt("classifier.threads"), "Number of CPU threads used for inference, 0 to use all")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
