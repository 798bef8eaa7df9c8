package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poonai/gist/internal/account"
	"github.com/poonai/gist/internal/config"
	"github.com/poonai/gist/internal/gist"
)

const (
	loginScope    = "gist"
	stdinFileName = "gist.txt"
)

func (a *app) newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <client-id>",
		Short: "Authorize an OAuth app with the device flow and save the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.login(cmd.Context(), args[0])
		},
	}
}

func (a *app) login(ctx context.Context, clientID string) error {
	flow := gist.NewDeviceFlow(clientID, a.gistOptions()...)
	code, err := flow.RequestCode(ctx, loginScope)
	if err != nil {
		return err
	}

	var login config.Login
	if a.interactive {
		if err := clipboard.WriteAll(code.UserCode); err != nil {
			a.log.Debug("copying user code to clipboard", zap.Error(err))
		}
		login, err = runLoginView(ctx, flow, code, a.in, a.out)
	} else {
		fmt.Fprintf(a.out, "open %s and enter '%s'\n", code.VerificationURI, code.UserCode)
		login, err = flow.PollToken(ctx, code)
	}
	if err != nil {
		return err
	}

	client, err := a.client(ctx, login)
	if err != nil {
		return err
	}
	user, err := client.User(ctx)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Set(user.Login, login) {
		fmt.Fprintf(a.errOut, "replacing saved account %q\n", user.Login)
	}
	if err := a.saveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *app) newUploadCommand() *cobra.Command {
	var (
		secret      bool
		description string
		name        string
		copyURL     bool
	)
	cmd := &cobra.Command{
		Use:   "upload [flags] FILES...",
		Short: "Create a gist from files, '-' reads stdin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args, name, a.in)
			if err != nil {
				return err
			}
			login, err := a.resolve()
			if err != nil {
				return err
			}
			client, err := a.client(cmd.Context(), login)
			if err != nil {
				return err
			}
			g, err := client.Upload(cmd.Context(), gist.UploadRequest{
				Files:       files,
				Description: description,
				Public:      !secret,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, g.HTMLURL)
			if copyURL {
				if err := clipboard.WriteAll(g.HTMLURL); err != nil {
					return fmt.Errorf("copying url to clipboard: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&secret, "secret", "s", false, "create a secret gist")
	cmd.Flags().StringVarP(&description, "description", "d", "", "gist description")
	cmd.Flags().StringVarP(&name, "name", "n", stdinFileName, "file name for content read from stdin")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "copy the gist url to the clipboard")
	return cmd
}

func (a *app) newUpdateCommand() *cobra.Command {
	var (
		description string
		files       []string
		remove      []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the description or files of a gist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := readFiles(files, stdinFileName, a.in)
			if err != nil {
				return err
			}
			login, err := a.resolve()
			if err != nil {
				return err
			}
			client, err := a.client(cmd.Context(), login)
			if err != nil {
				return err
			}
			g, err := client.Update(cmd.Context(), args[0], gist.UpdateRequest{
				Files:       contents,
				Remove:      remove,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, g.HTMLURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringArrayVarP(&files, "files", "f", nil, "files to add or overwrite")
	cmd.Flags().StringArrayVarP(&remove, "remove", "r", nil, "file names to remove from the gist")
	return cmd
}

func (a *app) newListCommand() *cobra.Command {
	var (
		starred bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "list [author]",
		Short: "List your gists, your starred gists or the public gists of author",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var author string
			if len(args) == 1 {
				author = args[0]
			}
			if starred && author != "" {
				return errors.New("--starred lists your own starred gists and takes no author")
			}
			if _, err := parseFormat(format); err != nil {
				return err
			}

			login, err := a.resolve()
			if author != "" && canListAnonymously(err) {
				a.log.Debug("no saved account, listing anonymously", zap.String("author", author))
				login, err = config.Login{}, nil
			}
			if err != nil {
				return err
			}
			client, err := a.client(cmd.Context(), login)
			if err != nil {
				return err
			}

			var gists []gist.Gist
			if starred {
				gists, err = client.ListStarred(cmd.Context())
			} else {
				gists, err = client.List(cmd.Context(), author)
			}
			if err != nil {
				return err
			}
			return writeGists(a.out, format, gists)
		},
	}
	cmd.Flags().BoolVar(&starred, "starred", false, "list your starred gists")
	cmd.Flags().StringVarP(&format, "output", "o", string(formatText), "output format: text, json or yaml")
	return cmd
}

// canListAnonymously reports whether a failed account lookup still allows
// listing someone's public gists without credentials.
func canListAnonymously(err error) bool {
	return errors.Is(err, account.ErrEmptyConfig) || errors.Is(err, config.ErrNoConfigDir)
}

func (a *app) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete gists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login, err := a.resolve()
			if err != nil {
				return err
			}
			client, err := a.client(cmd.Context(), login)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := client.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(a.out, id)
			}
			fmt.Fprintln(a.out, "Success!")
			return nil
		},
	}
}

func (a *app) newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List saved accounts, the default one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Len() == 0 {
				return account.ErrEmptyConfig
			}
			for i, name := range cfg.Names() {
				login, _ := cfg.Get(name)
				marker := " "
				if i == 0 {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%s %s (%s)\n", marker, name, login.Kind())
			}
			return nil
		},
	}
}

func (a *app) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <account>",
		Short: "Remove a saved account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Delete(args[0]) {
				return fmt.Errorf("%w: %q", account.ErrAccountNotFound, args[0])
			}
			if err := a.saveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "removed %s\n", args[0])
			return nil
		},
	}
}
