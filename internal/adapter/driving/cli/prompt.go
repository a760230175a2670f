package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readCredentials usa as flags de login e pergunta o que faltar.
// The password is read without echo when stdin is a terminal.
func readCredentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("METRICS_PASSWORD")
	}

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(in)

	if strings.TrimSpace(email) == "" {
		fmt.Fprint(out, "Email: ")
		line, err := readLine(reader)
		if err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
		email = line
	}

	if password == "" {
		fmt.Fprint(out, "Password: ")
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			raw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return "", "", fmt.Errorf("reading password: %w", err)
			}
			password = string(raw)
		} else {
			line, err := readLine(reader)
			if err != nil {
				return "", "", fmt.Errorf("reading password: %w", err)
			}
			password = line
		}
	}

	return strings.TrimSpace(email), password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
