package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func createUserCmd() *cobra.Command {
	var (
		email    string
		name     string
		role     string
		doctorID string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account (password is read from CLINICFLOW_USER_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("CLINICFLOW_USER_PASSWORD")
			if password == "" {
				return errors.New("CLINICFLOW_USER_PASSWORD must be set")
			}

			r := domain.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			var docID *uuid.UUID
			if doctorID != "" {
				id, err := uuid.Parse(doctorID)
				if err != nil {
					return fmt.Errorf("invalid --doctor-id: %w", err)
				}
				docID = &id
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Store.Driver != config.StoreDriverPostgres {
				return errors.New("create-user requires STORE_DRIVER=postgres")
			}

			ctx := context.Background()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			u, err := a.auth.CreateUser(ctx, email, password, name, r, docID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleReceptionist), "admin, doctor, receptionist, pharmacist or cashier")
	cmd.Flags().StringVar(&doctorID, "doctor-id", "", "doctor record to link, required for the doctor role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
