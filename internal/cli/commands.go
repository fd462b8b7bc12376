package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"busbooking/internal/app"
	"busbooking/internal/domain/models"

	"github.com/spf13/cobra"
)

// withApp opens the application for one command and always closes it.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app.App, out output) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := opts.Open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a, output{format: opts.Format, w: cmd.OutOrStdout()})
}

func NewProbeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "probe",
		Short:        "Check whether the booking database is reachable",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App, out output) error {
				online := a.Monitor.ProbeAndRemember(ctx)
				return out.emit(map[string]bool{"online": online}, func(w io.Writer) {
					if online {
						fmt.Fprintln(w, "online")
					} else {
						fmt.Fprintln(w, "offline")
					}
				})
			})
		},
	}
}

// pendingUser leaves the password hash out of operator output.
type pendingUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type pendingReport struct {
	Users    []pendingUser           `json:"users"`
	Bookings []models.PendingBooking `json:"bookings"`
	Corrupt  []string                `json:"corrupt"`
}

func NewPendingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "pending",
		Short:        "List records waiting for sync",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App, out output) error {
				rep := pendingReport{Users: []pendingUser{}, Bookings: []models.PendingBooking{}, Corrupt: []string{}}

				users, badUsers, err := a.Store.Users.Enumerate(ctx)
				if err != nil {
					return out.fail(nil, err)
				}
				bookings, badBookings, err := a.Store.Bookings.Enumerate(ctx)
				if err != nil {
					return out.fail(nil, err)
				}
				for _, u := range users {
					rep.Users = append(rep.Users, pendingUser{
						Username:  u.User.Username,
						Email:     u.User.Email,
						FullName:  u.User.FullName,
						CreatedAt: u.User.CreatedAt,
					})
				}
				for _, b := range bookings {
					rep.Bookings = append(rep.Bookings, b.Booking)
				}
				for _, c := range append(badUsers, badBookings...) {
					rep.Corrupt = append(rep.Corrupt, fmt.Sprintf("%s/%s: %v", c.Kind, c.ID, c.Err))
				}

				return out.emit(rep, func(w io.Writer) {
					fmt.Fprintf(w, "%d user(s), %d booking(s) pending\n", len(rep.Users), len(rep.Bookings))
					for _, u := range rep.Users {
						fmt.Fprintf(w, "  user     %-20s %s\n", u.Username, u.Email)
					}
					for _, b := range rep.Bookings {
						fmt.Fprintf(w, "  booking  %-20s %s schedule=%d seats=%d\n", b.Reference, b.Username, b.ScheduleID, b.SeatCount)
					}
					for _, c := range rep.Corrupt {
						fmt.Fprintf(w, "  corrupt  %s\n", c)
					}
				})
			})
		},
	}
}

func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "sync",
		Short:        "Reconcile pending records into the booking database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App, out output) error {
				res, err := a.Reconcile.Run(ctx)
				if err != nil {
					return out.fail(res, err)
				}
				return out.emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "synced %d user(s), %d booking(s)\n", res.UsersSynced, res.BookingsSynced)
					for _, e := range res.Errors {
						fmt.Fprintf(w, "  %s\n", e)
					}
				})
			})
		},
	}
}

func NewCacheCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "cache",
		Short:        "Refresh the schedule snapshot used offline",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App, out output) error {
				if !a.Monitor.ProbeAndRemember(ctx) {
					return out.fail(nil, errors.New("authority unreachable, snapshot left unchanged"))
				}
				n, err := a.Schedules.RefreshCache(ctx)
				if err != nil {
					return out.fail(nil, err)
				}
				return out.emit(map[string]int{"cached_schedules": n}, func(w io.Writer) {
					fmt.Fprintf(w, "cached %d schedule(s)\n", n)
				})
			})
		},
	}
}
