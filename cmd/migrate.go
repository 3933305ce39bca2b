package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/anoixa/depicts-editor/config"
	"github.com/anoixa/depicts-editor/database/dbcore"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := dbcore.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() {
			_ = dbcore.Close(db)
		}()

		if err := dbcore.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		log.Println("Database migration completed.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
