// Package authcmder provides the auth command for storing embedding
// provider API keys.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/credentials"
)

const authLongDesc string = `Store API keys for embedding providers.

Keys are written to credentials.toml in the .figsearch/ directory with 0600
permissions and handed to the encoders whenever figsearch builds them. The
FIGSEARCH_<PROVIDER>_API_KEY environment variable overrides a stored key.

Supported providers: openai

Examples:
  figsearch auth openai                Prompt for an OpenAI API key
  echo $KEY | figsearch auth openai    Read the key from stdin
  figsearch auth --list                List stored keys
  figsearch auth --remove openai       Remove the stored OpenAI key`

const authShortDesc string = "Store API keys for embedding providers"

type authCommander struct {
	list   bool
	remove string

	in  io.Reader
	out io.Writer
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			store, err := credentials.NewStore(configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			switch {
			case cmder.list:
				return cmder.runList(store)
			case cmder.remove != "":
				return cmder.runRemove(store, cmder.remove)
			case len(args) == 0:
				return fmt.Errorf("provider argument required\n\nSupported providers: %s",
					strings.Join(credentials.SupportedProviders(), ", "))
			default:
				return cmder.runAuth(store, args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedProviders(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&cmder.list, "list", false, "List stored keys")
	cmd.Flags().StringVar(&cmder.remove, "remove", "", "Remove the stored key for a provider")

	return cmd
}

func (c *authCommander) runAuth(store *credentials.Store, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !credentials.IsSupportedProvider(provider) {
		return fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s",
			provider, strings.Join(credentials.SupportedProviders(), ", "))
	}

	key, err := c.readKey(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	if err := store.Set(provider, key); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored %s key %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(provider),
		cliui.StepStyle.Render("("+store.Path()+")"),
	)
	return nil
}

func (c *authCommander) runList(store *credentials.Store) error {
	stored, err := store.Stored()
	if err != nil {
		return err
	}

	if len(stored) == 0 {
		fmt.Fprintf(c.out, "\n  %s No stored keys.\n", cliui.StepStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'figsearch auth <provider>' to store one.\n\n")
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored keys"))
	for _, p := range stored {
		note := "overridden by " + credentials.EnvVar(p)
		if os.Getenv(credentials.EnvVar(p)) == "" {
			note = "set " + credentials.EnvVar(p) + " to override"
		}
		fmt.Fprintf(c.out, "  %s  %s  %s\n", cliui.SuccessMark, cliui.ValueStyle.Render(p), cliui.StepStyle.Render(note))
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *authCommander) runRemove(store *credentials.Store, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := store.Remove(provider); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed %s key.\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(provider))
	return nil
}

// readKey prompts with hidden input on a terminal and reads the first line
// otherwise.
func (c *authCommander) readKey(provider string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter API key for %s: ", provider)
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(key), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
