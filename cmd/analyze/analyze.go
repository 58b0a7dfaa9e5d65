// Package analyze implements the one-shot file analysis command.
package analyze

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tsuchida/bunrui-go/internal/analysis"
	"github.com/tsuchida/bunrui-go/internal/conf"
)

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze [input.jpg]",
		Short: "Classify a single image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input.Path = args[0]
			return analysis.FileAnalysis(settings, save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the result like a web upload")
	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Upload.Path, "uploadpath", viper.GetString("upload.path"), "Directory for saved images")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
