package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/service"
)

var errNoSession = errors.New("no hay una sesión activa; ejecuta 'ecoruta login'")

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Connect(ctx); err != nil {
				return err
			}

			email, err := promptLine(cmd, "Email", email)
			if err != nil {
				return err
			}
			password, err := promptLine(cmd, "Password", password)
			if err != nil {
				return err
			}

			if err := app.session.Login(ctx, domain.LoginCredentials{Email: email, Password: password}); err != nil {
				return sessionError(app.session.State(), err)
			}

			st := app.session.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sesión iniciada como %s (%s)\n", st.User.DisplayName(), st.User.Rol)
			fmt.Fprintf(out, "Inicio: %s\n", service.Landing(st).Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var data domain.RegisterData
	var rol string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Connect(ctx); err != nil {
				return err
			}

			var err error
			if data.Password, err = promptLine(cmd, "Password", data.Password); err != nil {
				return err
			}
			if data.Password2, err = promptLine(cmd, "Confirm password", data.Password2); err != nil {
				return err
			}
			data.Rol = domain.Role(rol)

			if err := app.session.Register(ctx, data); err != nil {
				return sessionError(app.session.State(), err)
			}

			st := app.session.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Cuenta creada: %s (%s)\n", st.User.Email, st.User.Rol)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data.Email, "email", "", "account email")
	f.StringVar(&data.Password, "password", "", "password (prompted if omitted)")
	f.StringVar(&data.Password2, "password2", "", "password confirmation (prompted if omitted)")
	f.StringVar(&data.Nombre, "nombre", "", "first name")
	f.StringVar(&data.Apellido, "apellido", "", "last name")
	f.StringVar(&rol, "rol", "", "role: administrador, usuario, empresa_recolectora")
	f.StringVar(&data.Telefono, "telefono", "", "phone number")
	f.StringVar(&data.Direccion, "direccion", "", "address")
	f.Int64Var(&data.Localidad, "localidad", 0, "zone id")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Connect(cmd.Context()); err != nil {
				return err
			}

			res := app.session.Logout(cmd.Context())
			if !res.OK() {
				fmt.Fprintf(cmd.ErrOrStderr(), "aviso: %v\n", res.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.resume(cmd)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), st.User)
			}
			printUser(cmd.OutOrStdout(), st.User)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the user as JSON")
	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in user's profile",
	}

	var email, nombre, apellido, telefono, direccion string
	var localidad int64

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.resume(cmd); err != nil {
				return err
			}

			var u domain.UserUpdate
			changed := cmd.Flags().Changed
			if changed("email") {
				u.Email = &email
			}
			if changed("nombre") {
				u.Nombre = &nombre
			}
			if changed("apellido") {
				u.Apellido = &apellido
			}
			if changed("telefono") {
				u.Telefono = &telefono
			}
			if changed("direccion") {
				u.Direccion = &direccion
			}
			if changed("localidad") {
				u.Localidad = &localidad
			}

			if err := app.session.UpdateUser(cmd.Context(), u); err != nil {
				return sessionError(app.session.State(), err)
			}
			printUser(cmd.OutOrStdout(), app.session.State().User)
			return nil
		},
	}

	f := update.Flags()
	f.StringVar(&email, "email", "", "new email")
	f.StringVar(&nombre, "nombre", "", "new first name")
	f.StringVar(&apellido, "apellido", "", "new last name")
	f.StringVar(&telefono, "telefono", "", "new phone number")
	f.StringVar(&direccion, "direccion", "", "new address")
	f.Int64Var(&localidad, "localidad", 0, "new zone id")

	profile.AddCommand(update)
	return profile
}

// resume recovers the stored session and requires it to be authenticated.
func (a *App) resume(cmd *cobra.Command) (domain.State, error) {
	if err := a.Connect(cmd.Context()); err != nil {
		return domain.State{}, err
	}
	a.session.Start(cmd.Context())

	st := a.session.State()
	if !st.IsAuthenticated {
		return st, errNoSession
	}
	return st, nil
}
