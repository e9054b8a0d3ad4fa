package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/mahudhurio/core/subject"
)

var (
	isTerminalFunc = term.IsTerminal
	stdinFd        = func() int { return int(os.Stdin.Fd()) }

	errNeedsConfirmation = errors.New("stdin is not a terminal: pass --yes to delete")
)

func (c *cli) subjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subjects",
		Aliases: []string{"subject"},
		Short:   "List, add and delete subjects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, err := c.subjects.QueryAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(subjects) == 0 {
				c.printf("No subjects yet. Add your first subject to start tracking attendance.\n")
				return nil
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = w.Write([]byte("ID\tNAME\tADDED\n"))
			for _, s := range subjects {
				_, _ = w.Write([]byte(strconv.Itoa(s.ID) + "\t" + s.Name + "\t" + s.AddedOn() + "\n"))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := c.subjects.Create(cmd.Context(), subject.NewSubject{Name: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			c.printf("Added subject %d: %s\n", sub.ID, sub.Name)
			return nil
		},
	})

	var yes bool
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a subject and all its attendance records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return errors.Errorf("invalid subject id %q", args[0])
			}
			if !yes {
				ok, err := c.confirm("Delete subject " + args[0] + " and all its attendance records? [y/N]: ")
				if err != nil {
					return err
				}
				if !ok {
					c.printf("Cancelled.\n")
					return nil
				}
			}
			if err := c.subjects.Delete(cmd.Context(), id); err != nil {
				return err
			}
			c.printf("Deleted subject %d.\n", id)
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(del)

	return cmd
}

// confirm asks a yes/no question on the terminal; anything but "y" or "yes" is a no.
func (c *cli) confirm(question string) (bool, error) {
	if !isTerminalFunc(stdinFd()) {
		return false, errNeedsConfirmation
	}
	c.printf("%s", question)
	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
