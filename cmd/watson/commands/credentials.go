package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

type credentialFlags struct {
	url         string
	version     string
	username    string
	password    string
	apiKey      string
	iamURL      string
	accessToken string
	prompt      bool
}

func newConfigSetCredentialsCommand() *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "set-credentials SERVICE",
		Short: "Set service credentials",
		Long: `Store the endpoint and credentials of a service. Use --apikey for IAM,
--username with --password for basic credentials, or --access-token for a
token you manage yourself. With --prompt the secret is read from the terminal.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: knownServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			config, err := loadConfig()
			if err != nil {
				return err
			}

			svc, err := ensureService(config, service)
			if err != nil {
				return err
			}

			if flags.prompt {
				err = promptSecret(cmd, &flags)
				if err != nil {
					return err
				}
			}

			applyCredentialFlags(svc, flags)

			err = saveConfig(config)
			if err != nil {
				return err
			}

			return writeUpdate(cmd, "set-credentials", "credentials", "", service)
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", "", "service endpoint URL")
	cmd.Flags().StringVar(&flags.version, "service-version", "", "API version date stored for the service")
	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "basic auth username")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "basic auth password")
	cmd.Flags().StringVar(&flags.apiKey, "apikey", "", "IAM API key")
	cmd.Flags().StringVar(&flags.iamURL, "iam-url", "", "IAM token endpoint")
	cmd.Flags().StringVar(&flags.accessToken, "access-token", "", "user-managed IAM access token")
	cmd.Flags().BoolVar(&flags.prompt, "prompt", false, "read the password or API key from the terminal")

	return cmd
}

// applyCredentialFlags switches the service to the credentials given. Setting
// one kind of credential clears the others and any cached token.
func applyCredentialFlags(svc *ServiceConfig, flags credentialFlags) {
	if flags.url != "" {
		svc.URL = flags.url
	}

	if flags.version != "" {
		svc.Version = flags.version
	}

	if flags.iamURL != "" {
		svc.IAMURL = flags.iamURL
	}

	switch {
	case flags.accessToken != "":
		svc.AccessToken = flags.accessToken
		svc.IAMAPIKey, svc.Username, svc.Password = "", "", ""
	case flags.apiKey != "":
		svc.IAMAPIKey = flags.apiKey
		svc.AccessToken, svc.Username, svc.Password = "", "", ""
	case flags.username != "":
		svc.Username = flags.username
		svc.Password = flags.password
		svc.IAMAPIKey, svc.AccessToken = "", ""
	default:
		return
	}

	svc.Token = ""
	svc.TokenExpiresAt = nil
	svc.RefreshToken = ""
	svc.LastRefreshed = nil
}

func promptSecret(cmd *cobra.Command, flags *credentialFlags) error {
	label := "API key"
	if flags.username != "" {
		label = "Password"
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)

	secret, err := readSecret(cmd.InOrStdin())

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return err
	}

	if flags.username != "" {
		flags.password = secret
	} else {
		flags.apiKey = secret
	}

	return nil
}

// readSecret reads without echo from a terminal, or a single line otherwise.
func readSecret(in io.Reader) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}

		return checkSecret(string(secret))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return checkSecret(line)
}

func checkSecret(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", constants.ErrEmptySecret
	}

	return secret, nil
}
