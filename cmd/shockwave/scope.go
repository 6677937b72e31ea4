package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Manage the rules deciding which launches a sync keeps",
	Long: `Scope rules are regular expressions matched against the site, rocket or mission
of every fetched launch. Exclusion rules win, then inclusion rules, then the default
(scope.default_allow in config.yaml).`,
}

var scopeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scope rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		defaultRule := "deny"
		if planner.Config.Scope.DefaultAllow {
			defaultRule = "allow"
		}
		fmt.Fprintln(out, field("Default", defaultRule))
		rules := planner.Config.Scope.Rules
		if len(rules) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No rules"))
			return nil
		}
		for _, rule := range rules {
			kind := successStyle.Render("include")
			if rule.Exclude {
				kind = errorStyle.Render("exclude")
			}
			fmt.Fprintln(out, rowStyle.Width(9).Render(kind)+rowStyle.Width(9).Render(rule.MatchType)+rule.Pattern)
		}
		return nil
	},
}

var scopeAddCmd = &cobra.Command{
	Use:   "add PATTERN site|rocket|mission",
	Short: "Add a scope rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exclude, _ := cmd.Flags().GetBool("exclude")
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}
		if err := planner.AddScopeRule(args[0], args[1], exclude); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Rule added"))
		return nil
	},
}

var scopeRemoveCmd = &cobra.Command{
	Use:   "remove PATTERN site|rocket|mission",
	Short: "Remove a scope rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exclude, _ := cmd.Flags().GetBool("exclude")
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}
		if err := planner.RemoveScopeRule(args[0], args[1], exclude); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Rule removed"))
		return nil
	},
}

var scopeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every scope rule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := loadPlanner(false)
		if err != nil {
			return err
		}
		if err := planner.ClearScopeRules(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Rules cleared"))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{scopeAddCmd, scopeRemoveCmd} {
		cmd.Flags().BoolP("exclude", "x", false, "Exclusion rule")
	}
	scopeCmd.AddCommand(scopeListCmd, scopeAddCmd, scopeRemoveCmd, scopeClearCmd)
	rootCmd.AddCommand(scopeCmd)
}
