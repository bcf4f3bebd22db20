package main

import (
	"context"
	"fmt"
	"strconv"

	"clipper/internal/cache"
	"clipper/internal/repository"
	"clipper/internal/service"

	"github.com/spf13/cobra"
)

type adminDeps struct {
	files      repository.UploadedFileRepository
	users      repository.UserRepository
	processing service.ProcessingService
	cache      cache.DashboardCache
}

type depsOpener func(ctx context.Context) (*adminDeps, func(), error)

func newRootCmd(open depsOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "clipper-admin",
		Short:         "Operator tasks for the clipper backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRequeueCmd(open), newCreditsCmd(open))
	return root
}

func newRequeueCmd(open depsOpener) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "requeue <uploaded-file-id>",
		Short: "Submit an uploaded file to the clip pipeline again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, cleanup, err := open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id := args[0]
			file, err := deps.files.GetUploadedFileByID(ctx, id)
			if err != nil {
				return err
			}
			if file == nil {
				return fmt.Errorf("uploaded file %s not found", id)
			}
			if file.Uploaded && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded file %s is already queued; use --force to submit it again\n", id)
				return nil
			}
			if force {
				if err := deps.files.ResetQueued(ctx, id); err != nil {
					return err
				}
			}
			res, err := deps.processing.Submit(ctx, file.UserID, id)
			if err != nil {
				return err
			}
			if !res.Enqueued {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded file %s is being submitted by another request\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued uploaded file %s (message %s)\n", id, res.MessageID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "clear the queued flag before submitting")
	return cmd
}

func newCreditsCmd(open depsOpener) *cobra.Command {
	credits := &cobra.Command{
		Use:   "credits",
		Short: "Manage user credit balances",
	}
	credits.AddCommand(&cobra.Command{
		Use:   "grant <user-id> <amount>",
		Short: "Add credits to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive integer, got %q", args[1])
			}
			ctx := cmd.Context()
			deps, cleanup, err := open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := deps.users.AddCredits(ctx, args[0], amount)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user %s not found", args[0])
			}
			if err := deps.cache.Invalidate(ctx, user.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: dashboard cache not invalidated: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %d credits to %s, balance %d\n", amount, user.ID, user.Credits)
			return nil
		},
	})
	return credits
}
