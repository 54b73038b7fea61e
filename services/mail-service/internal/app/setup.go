package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/accounts"
	"github.com/stoik/mailhub/services/mail-service/internal/db"
	"github.com/stoik/mailhub/services/mail-service/internal/session"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Setup database and create a demo user",
	Long:  "Creates database tables and inserts a demo application user for development/testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Initialize database
		if err := db.Init(ctx, viper.GetString("database.url")); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		fmt.Println("Running migrations...")
		if err := db.Migrate(ctx, db.Pool); err != nil {
			return err
		}

		email := viper.GetString("setup.demo_email")
		if email == "" {
			fmt.Println("✓ Database setup complete")
			return nil
		}

		fmt.Println("Inserting demo user...")
		hash, err := session.HashPassword(viper.GetString("setup.demo_password"))
		if err != nil {
			return err
		}
		store := accounts.NewPostgresStore(db.Pool)
		user := &models.ApplicationUser{Email: email, Name: "Demo", PasswordHash: hash}
		err = store.CreateUser(ctx, user)
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			fmt.Printf("✓ Database setup complete. Demo user %s already exists\n", email)
			return nil
		case err != nil:
			return fmt.Errorf("failed to insert demo user: %w", err)
		}

		fmt.Printf("✓ Database setup complete. Demo user: %s (%s)\n", email, user.ID)
		return nil
	},
}

func init() {
	setupCmd.Flags().String("setup.demo_email", "demo@example.com", "Email of the demo user to create (empty to skip)")
	setupCmd.Flags().String("setup.demo_password", "demo", "Password of the demo user")
	viper.BindPFlag("setup.demo_email", setupCmd.Flags().Lookup("setup.demo_email"))
	viper.BindPFlag("setup.demo_password", setupCmd.Flags().Lookup("setup.demo_password"))

	rootCmd.AddCommand(setupCmd)
}
