package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/book-club/internal/client"
	"github.com/magabrotheeeer/book-club/internal/models"
)

func (a *App) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Work with the club's book list",
	}
	cmd.AddCommand(a.booksListCmd(), a.booksAddCmd(), a.booksRemoveCmd())
	return cmd
}

func (a *App) booksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all books",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := a.guard(client.ViewBooks); done {
				return err
			}

			var books []models.Book
			err := a.session.Do(cmd.Context(), func(ctx context.Context) error {
				var err error
				books, err = a.api.ListBooks(ctx)
				return err
			})
			if err != nil {
				return a.loginRequired(err)
			}

			if len(books) == 0 {
				fmt.Fprintln(a.out, "No books yet")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR")
			for _, b := range books {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Title, b.Author)
			}
			return tw.Flush()
		},
	}
}

func (a *App) booksAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.guard(client.ViewBooks); done {
				return err
			}

			var id int64
			err := a.session.Do(cmd.Context(), func(ctx context.Context) error {
				var err error
				id, err = a.api.AddBook(ctx, args[0], args[1], description)
				return err
			})
			if err != nil {
				return a.loginRequired(err)
			}
			fmt.Fprintf(a.out, "Book added with id %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Short description")
	return cmd
}

func (a *App) booksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a book (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.guard(client.ViewBooks); done {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			err = a.session.Do(cmd.Context(), func(ctx context.Context) error {
				return a.api.DeleteBook(ctx, id)
			})
			if err != nil {
				return a.loginRequired(err)
			}
			fmt.Fprintln(a.out, "Book deleted")
			return nil
		},
	}
}
