package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
)

// loginCmd exchanges credentials for a bearer token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and print a bearer token",
	Long: `Sign in with a console username and password.

The token is printed on stdout so it can be exported as CONSOLE_TOKEN:
  export CONSOLE_TOKEN=$(consolectl login -u admin -p secret)`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx, cancel, repos, err := repositories(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	res := repos.Auth.Login(ctx, strings.TrimSpace(loginUser), loginPassword)
	if !res.OK() {
		return fmt.Errorf("login failed: %s", res.Message())
	}
	creds := res.Data()
	fmt.Fprintln(cmd.ErrOrStderr(), "signed in as", creds.Name, "with", len(creds.Permissions), "permissions")
	fmt.Fprintln(cmd.OutOrStdout(), creds.Token)
	return nil
}
