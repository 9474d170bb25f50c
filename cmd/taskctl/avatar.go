package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var avatarUser string

var avatarCmd = &cobra.Command{
	Use:   "avatar [image file]",
	Short: "Upload a profile picture",
	Long:  `Uploads a JPG, PNG, GIF or WebP image (max 5MB) as the user's avatar and prints its public URL.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAvatar,
}

func init() {
	rootCmd.AddCommand(avatarCmd)
	avatarCmd.Flags().StringVar(&avatarUser, "user", "", "User ID that owns the avatar")
	_ = avatarCmd.MarkFlagRequired("user")
}

func runAvatar(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(avatarUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	url, err := c.UploadAvatar(cmd.Context(), accessToken, userID, filepath.Base(args[0]), image)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
