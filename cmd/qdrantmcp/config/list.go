package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/cliui"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/config"
)

const listLongDesc string = `List all configuration values.

Shows every supported configuration key alongside its current value,
merged from config.toml and built-in defaults. Values left empty in
the config file are shown as <not set>.`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}

	keys := config.ValidConfigKeys()

	maxLen := 0
	for _, key := range keys {
		if len(key) > maxLen {
			maxLen = len(key)
		}
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Printf("  %-*s = %s\n",
				maxLen, cliui.KeyStyle.Render(key),
				cliui.DimStyle.Render("<not set>"),
			)
			continue
		}

		fmt.Printf("  %-*s = %s\n",
			maxLen, cliui.KeyStyle.Render(key),
			cliui.ValueStyle.Render(fmt.Sprintf("%q", value)),
		)
	}
	fmt.Println()

	return nil
}
