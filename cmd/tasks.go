package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	doneMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage your tasks",
	Long: `List and mutate your tasks.

Every mutation round-trips through the server; what you see after a
command is the server's canonical copy, never a local guess.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := e.guard.Require(); err != nil {
			return err
		}

		tc := internal.NewTaskController(e.client)
		if err := tc.Load(cmd.Context()); err != nil {
			return fmt.Errorf("%s", tc.Err())
		}

		tasks := tc.Tasks()
		if len(tasks) == 0 {
			fmt.Println(mutedStyle.Render("No tasks yet. Add one with 'teamtask tasks add \"...\"'."))
			return nil
		}

		total, completed := tc.Stats()
		fmt.Println(headerStyle.Render(fmt.Sprintf("TASKS — %d total · %d done · %d remaining", total, completed, total-completed)))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, t := range tasks {
			mark := " "
			if t.IsCompleted {
				mark = doneMarkStyle.Render("✓")
			}
			fmt.Fprintf(w, "[%s]\t%s\t%s\t%s\n",
				mark,
				titleStyle.Render(t.Title),
				idStyle.Render(t.ID),
				dateStyle.Render(t.UpdatedAt),
			)
		}
		return w.Flush()
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := e.guard.Require(); err != nil {
			return err
		}

		tc := internal.NewTaskController(e.client)
		task, err := tc.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(okStyle.Render("Added"), titleStyle.Render(task.Title), idStyle.Render(task.ID))
		return nil
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle <task-id>",
	Short: "Flip a task between done and not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := e.guard.Require(); err != nil {
			return err
		}

		// Toggling sends the complement of the current state, so the
		// collection has to be loaded first.
		tc := internal.NewTaskController(e.client)
		if err := tc.Load(cmd.Context()); err != nil {
			return fmt.Errorf("%s", tc.Err())
		}

		task, err := tc.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		state := "not done"
		if task.IsCompleted {
			state = "done"
		}
		fmt.Println(okStyle.Render("Updated"), titleStyle.Render(task.Title), mutedStyle.Render("("+state+")"))
		return nil
	},
}

var tasksRenameCmd = &cobra.Command{
	Use:   "rename <task-id> <title>",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := e.guard.Require(); err != nil {
			return err
		}

		tc := internal.NewTaskController(e.client)
		task, err := tc.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(okStyle.Render("Renamed"), titleStyle.Render(task.Title))
		return nil
	},
}

var tasksRemoveCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if _, err := e.guard.Require(); err != nil {
			return err
		}

		tc := internal.NewTaskController(e.client)
		if err := tc.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Println(okStyle.Render("Deleted"), idStyle.Render(args[0]))
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksToggleCmd)
	tasksCmd.AddCommand(tasksRenameCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	rootCmd.AddCommand(tasksCmd)
}
