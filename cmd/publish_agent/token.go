package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/mktdept/content-pipeline/internal/config"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the status API token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Set the API token used to authenticate against the status API",
	Long:  "Hashes the given token with bcrypt and stores the hash in project.json. The plaintext token is never persisted; clients present it to POST /auth/token in exchange for a session JWT.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenSet,
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Generate a random API token and store its hash",
	Long:  "Generates a random token, stores its bcrypt hash in project.json, and prints the plaintext once. Save it; it cannot be recovered.",
	Args:  cobra.NoArgs,
	RunE:  runTokenIssue,
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenSet(_ *cobra.Command, args []string) error {
	project, err := config.LoadProject(projectRoot)
	if err != nil {
		return err
	}

	tokenConfig, err := config.NewTokenConfig()
	if err != nil {
		return err
	}

	hash, err := tokenConfig.HashToken(args[0])
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	project.APITokenHash = hash
	if err := project.Save(); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}

	fmt.Println("API token updated")
	return nil
}

func runTokenIssue(_ *cobra.Command, _ []string) error {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	project, err := config.LoadProject(projectRoot)
	if err != nil {
		return err
	}

	tokenConfig, err := config.NewTokenConfig()
	if err != nil {
		return err
	}

	hash, err := tokenConfig.HashToken(token)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	project.APITokenHash = hash
	if err := project.Save(); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}

	fmt.Printf("API token: %s\n", token)
	fmt.Println("Store it somewhere safe; only the hash is kept in project.json.")
	return nil
}
