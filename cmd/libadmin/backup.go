package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libadmin/config"
	"libadmin/internal/api"
	"libadmin/internal/backup"
	"libadmin/internal/session"
)

func newBackupCmd() *cobra.Command {
	var email, password, out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Sign in and save the backend backup to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				p, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := api.NewClient(cfg.Backend.URL, &http.Client{Timeout: cfg.Backend.Timeout}, api.WithLogger(log.Default()))
			if err != nil {
				return err
			}
			file, err := fetchBackup(cmd.Context(), client, email, password)
			if err != nil {
				return err
			}
			if out == "" {
				out = file.Name
			}
			if err := os.WriteFile(out, file.Body, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Printf("✅ Backup saved to %s (%d bytes)", out, len(file.Body))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (prompted when empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default "+backup.FileName+")")
	return cmd
}

// fetchBackup signs in with a cookie-jar session and downloads the backup.
func fetchBackup(ctx context.Context, client *api.Client, email, password string) (backup.File, error) {
	jar, err := session.NewJar()
	if err != nil {
		return backup.File{}, err
	}
	nav := &api.Redirector{}

	cookies, err := client.Bind(session.Anonymous{}, nav).Exchange(ctx, api.Call{
		Method: http.MethodPost,
		Path:   api.SignInPath,
		Form:   url.Values{"email": {email}, "password": {password}},
		Label:  "Failed to sign in",
	})
	if err != nil {
		return backup.File{}, err
	}
	jar.Store(client.URL("/"), cookies)
	subject, ok := session.Cookies(cookies).Subject(time.Now())
	if !ok {
		return backup.File{}, errors.New("backend returned no usable access token")
	}

	store := backup.NewStore()
	holder := backup.NewHolder()
	if _, err := store.Fetch(ctx, client.Bind(jar, nav), holder, subject); err != nil {
		if api.IsUnauthorized(err) {
			return backup.File{}, fmt.Errorf("%s is not allowed to fetch backups: %w", email, err)
		}
		return backup.File{}, err
	}
	file, ok := store.Download(holder, subject)
	if !ok {
		return backup.File{}, errors.New("backend returned an empty backup")
	}
	return file, nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
