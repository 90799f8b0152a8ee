package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a backend collection as JSON",
		Long: "List a backend collection as JSON. Resources: localidades, tipos-residuos, " +
			"empresas, solicitudes, canjes, notificaciones, recompensas, usuarios.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Connect(cmd.Context()); err != nil {
				return err
			}

			list, err := app.services.Lister(args[0])
			if err != nil {
				return fmt.Errorf("%w (disponibles: %s)", err, strings.Join(app.services.ResourceNames(), ", "))
			}

			query := url.Values{}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("invalid query %q, expected key=value", p)
				}
				query.Add(k, v)
			}

			page, err := list(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("list %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "query", "q", nil, "query parameter key=value (repeatable)")
	return cmd
}
