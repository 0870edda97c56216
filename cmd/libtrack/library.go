package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libtrack/internal/bootstrap"
	librarydto "libtrack/internal/modules/library/dto"
)

const dateLayout = "2006-01-02"

func newCategoryCmd(flags *rootFlags) *cobra.Command {
	category := &cobra.Command{Use: "category", Short: "Manage categories"}

	category.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.CreateCategory(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "created category", out)
			})
		},
	})

	category.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories with book counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				categories, err := app.LibraryCLI.ListCategories(ctx)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no categories")
					return nil
				}
				for _, c := range categories {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d books\n", c.ID, c.Name, c.BookCount)
				}
				return nil
			})
		},
	})

	category.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its books become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.DeleteCategory(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "deleted category", out)
			})
		},
	})
	return category
}

func newBookCmd(flags *rootFlags) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Manage the catalogue"}

	var isbn, categoryID string
	addCmd := &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.CreateBook(ctx, args[0], args[1], isbn, categoryID)
				if err != nil {
					return err
				}
				return printOutcome(cmd, "added book", out)
			})
		},
	}
	addCmd.Flags().StringVar(&isbn, "isbn", "", "ISBN (optional)")
	addCmd.Flags().StringVar(&categoryID, "category", "", "category id (optional)")

	var updTitle, updAuthor, updISBN, updCategory string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a book's title, author, ISBN and category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				current, err := app.LibraryCLI.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				title, author, isbn, category := current.Title, current.Author, current.ISBN, current.CategoryID
				if cmd.Flags().Changed("title") {
					title = updTitle
				}
				if cmd.Flags().Changed("author") {
					author = updAuthor
				}
				if cmd.Flags().Changed("isbn") {
					isbn = updISBN
				}
				if cmd.Flags().Changed("category") {
					category = updCategory
				}
				out, err := app.LibraryCLI.UpdateBook(ctx, args[0], title, author, isbn, category)
				if err != nil {
					return err
				}
				return printOutcome(cmd, "updated book", out)
			})
		},
	}
	updateCmd.Flags().StringVar(&updTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updAuthor, "author", "", "new author")
	updateCmd.Flags().StringVar(&updISBN, "isbn", "", "new ISBN (empty clears)")
	updateCmd.Flags().StringVar(&updCategory, "category", "", "new category id (empty clears)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book that is not on loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.DeleteBook(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "deleted book", out)
			})
		},
	}

	var listCategory, search string
	var availableOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				books, err := app.LibraryCLI.ListBooks(ctx, listCategory, search, availableOnly)
				if err != nil {
					return err
				}
				if len(books) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
					return nil
				}
				for _, b := range books {
					state := "available"
					if !b.IsAvailable {
						state = "on loan"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.CategoryName, state)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&listCategory, "category", "", "only books in this category id")
	listCmd.Flags().StringVar(&search, "search", "", "case-insensitive title/author substring")
	listCmd.Flags().BoolVar(&availableOnly, "available", false, "only books not on loan")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.LibraryCLI.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "id:        %s\n", b.ID)
				_, _ = fmt.Fprintf(w, "title:     %s\n", b.Title)
				_, _ = fmt.Fprintf(w, "author:    %s\n", b.Author)
				_, _ = fmt.Fprintf(w, "isbn:      %s\n", b.ISBN)
				_, _ = fmt.Fprintf(w, "category:  %s\n", b.CategoryName)
				_, _ = fmt.Fprintf(w, "added:     %s\n", b.AddedAt.Format(dateLayout))
				_, _ = fmt.Fprintf(w, "available: %t\n", b.IsAvailable)
				return nil
			})
		},
	}

	var importCategory string
	importCmd := &cobra.Command{
		Use:   "import-pdf <path>",
		Short: "Add a book from a PDF's title and author metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.ImportPDF(ctx, args[0], importCategory)
				if err != nil {
					return err
				}
				return printOutcome(cmd, "imported book", out)
			})
		},
	}
	importCmd.Flags().StringVar(&importCategory, "category", "", "category id (optional)")

	book.AddCommand(addCmd, updateCmd, deleteCmd, listCmd, showCmd, importCmd)
	return book
}

func newMemberCmd(flags *rootFlags) *cobra.Command {
	member := &cobra.Command{Use: "member", Short: "Manage members"}

	member.AddCommand(&cobra.Command{
		Use:   "add <name> <email>",
		Short: "Register a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.CreateMember(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "added member", out)
			})
		},
	})

	member.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				members, err := app.LibraryCLI.ListMembers(ctx)
				if err != nil {
					return err
				}
				if len(members) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no members")
					return nil
				}
				for _, m := range members {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d on loan\n", m.ID, m.Name, m.Email, m.ActiveLoans)
				}
				return nil
			})
		},
	})

	member.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a member with current and past loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				m, err := app.LibraryCLI.GetMember(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s <%s> joined %s\n", m.Name, m.Email, m.JoinedAt.Format(dateLayout))
				_, _ = fmt.Fprintf(w, "active loans: %d\n", len(m.Active))
				for _, l := range m.Active {
					printLoan(cmd, l)
				}
				_, _ = fmt.Fprintf(w, "past loans: %d\n", len(m.Past))
				for _, l := range m.Past {
					printLoan(cmd, l)
				}
				return nil
			})
		},
	})

	member.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.DeleteMember(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "deleted member", out)
			})
		},
	})
	return member
}

func newLoanCmd(flags *rootFlags) *cobra.Command {
	loan := &cobra.Command{Use: "loan", Short: "Borrow and return books"}

	var dueDays int
	borrowCmd := &cobra.Command{
		Use:   "borrow <book-id> <member-id>",
		Short: "Lend a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.Borrow(ctx, args[0], args[1], dueDays)
				if err != nil {
					return err
				}
				return printOutcome(cmd, "created loan", out)
			})
		},
	}
	borrowCmd.Flags().IntVar(&dueDays, "days", 0, "loan length in days (default from config)")

	returnCmd := &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Mark a loan returned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.Return(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutcome(cmd, "returned loan", out)
			})
		},
	}

	var status, memberID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				loans, err := app.LibraryCLI.ListLoans(ctx, status, memberID)
				if err != nil {
					return err
				}
				if len(loans) == 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no %s loans\n", status)
					return nil
				}
				for _, l := range loans {
					printLoan(cmd, l)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&status, "status", "active", "all|active|returned|overdue")
	listCmd.Flags().StringVar(&memberID, "member", "", "only loans of this member id")

	loan.AddCommand(borrowCmd, returnCmd, listCmd)
	return loan
}

func printLoan(cmd *cobra.Command, l librarydto.LoanOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
		l.ID, l.BookTitle, l.MemberName, formatDate(l.DueAt), l.StatusLabel)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
