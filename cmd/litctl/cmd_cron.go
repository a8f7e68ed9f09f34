package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litcafe/backoffice/internal/cron"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/internal/suppliers"
	"github.com/litcafe/backoffice/pkg/redis"
)

// cronLockName matches the worker so manual runs never overlap a cycle.
const cronLockName = "cron-worker"

func newCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Run maintenance jobs by hand",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run [job...]",
		Short: "Run the named jobs once, or every job when none is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				jobs, err := standardRegistry(a)
				if err != nil {
					return err
				}

				redisClient, err := redis.New(ctx, a.cfg.Redis, a.logg)
				if err != nil {
					return err
				}
				defer redisClient.Close()

				lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cronLockName), a.cfg.Cron.LockTTL)
				if err != nil {
					return err
				}
				locked, err := lock.Acquire(ctx)
				if err != nil {
					return err
				}
				if !locked {
					return fmt.Errorf("cron worker is mid-cycle; try again shortly")
				}
				defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()

				service, err := cron.NewService(cron.ServiceParams{
					Logger:   a.logg,
					Registry: jobs,
					Lock:     lock,
				})
				if err != nil {
					return err
				}
				if err := service.RunJobs(ctx, args...); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "jobs complete")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				jobs, err := standardRegistry(a)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(jobs.Names(), "\n"))
				return nil
			})
		},
	})
	return cmd
}

func standardRegistry(a *app) (*cron.Registry, error) {
	conn := a.db.DB()
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), suppliers.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	return cron.NewStandardRegistry(cron.StandardJobsParams{
		Logger:    a.logg,
		Inventory: inventoryService,
		Sales:     sales.NewRepository(conn),
	})
}
