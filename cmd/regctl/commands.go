package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"regform/internal/client"
	"regform/internal/registration/models"
)

const defaultServer = "http://localhost:3000"

func newRootCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)
	root := &cobra.Command{
		Use:          "regctl",
		Short:        "Register users and inspect the registration server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&server, "server", firstNonEmpty(os.Getenv("REGFORM_SERVER"), defaultServer), "registration server base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	api := func() *client.Client { return client.New(server) }
	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	root.AddCommand(
		newRegisterCmd(api, withTimeout),
		newUsersCmd(api, withTimeout),
		newCountCmd(api, withTimeout),
	)
	return root
}

type ctxFunc func(cmd *cobra.Command) (context.Context, context.CancelFunc)

func newRegisterCmd(api func() *client.Client, withTimeout ctxFunc) *cobra.Command {
	var sub models.Submission
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Submit one registration, validating it locally first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			form := client.NewController(api(), 0)
			form.Set(client.FieldName, sub.Name)
			form.Set(client.FieldGender, sub.Gender)
			form.Set(client.FieldEmail, sub.Email)
			form.Set(client.FieldCountry, sub.Country)

			state := form.Submit(ctx)
			msg := form.Message().Text
			if state != client.StateSuccess {
				return errors.New(msg)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "full name")
	cmd.Flags().StringVar(&sub.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&sub.Email, "email", "", "email address")
	cmd.Flags().StringVar(&sub.Country, "country", "", "country")
	return cmd
}

func newUsersCmd(api func() *client.Client, withTimeout ctxFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			users, err := api().Users(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newCountCmd(api func() *client.Client, withTimeout ctxFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			n, err := api().Count(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
