package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoruta/portal/internal/core/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUser(w io.Writer, u *domain.User) {
	fmt.Fprintf(w, "%-10s %d\n", "ID", u.ID)
	fmt.Fprintf(w, "%-10s %s\n", "Nombre", u.DisplayName())
	fmt.Fprintf(w, "%-10s %s\n", "Email", u.Email)
	fmt.Fprintf(w, "%-10s %s\n", "Rol", u.Rol)
	fmt.Fprintf(w, "%-10s %d\n", "Puntos", u.PuntosAcumulados)
	if u.Telefono != "" {
		fmt.Fprintf(w, "%-10s %s\n", "Teléfono", u.Telefono)
	}
}

// promptLine reads one line from the command input when value is empty.
func promptLine(cmd *cobra.Command, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), label+": ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// sessionError prefers the message recorded by the session.
func sessionError(st domain.State, err error) error {
	if st.Error != "" {
		return fmt.Errorf("%s", st.Error)
	}
	return err
}
