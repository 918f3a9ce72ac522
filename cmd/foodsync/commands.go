package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"foodsync/internal/nutrition"
	"foodsync/internal/recipe"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"o"},
	Value:   "json",
	Usage:   "output format (json or yaml)",
}

var catalogFlag = &cli.StringFlag{
	Name:  "catalog",
	Usage: "path to a catalog YAML file; the built-in catalog is used when empty",
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "foodsync",
		Usage:  "nutrition targets and fridge-based recipe matching",
		Writer: out,
		Commands: []*cli.Command{
			nutritionCmd(),
			matchCmd(),
			catalogCmd(),
		},
	}
}

func nutritionCmd() *cli.Command {
	return &cli.Command{
		Name:  "nutrition",
		Usage: "Compute daily calorie and macro targets for a biometric profile",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "weight", Usage: "weight in kg"},
			&cli.FloatFlag{Name: "height", Usage: "height in cm"},
			&cli.IntFlag{Name: "age", Usage: "age in years"},
			&cli.StringFlag{Name: "gender", Usage: "male, female or other"},
			&cli.StringFlag{Name: "activity", Usage: "sedentary, light, moderate, active or very_active"},
			&cli.StringFlag{Name: "goal", Usage: "lose_weight, maintain or gain_muscle"},
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			profile, err := profileFromFlags(cmd).Biometrics()
			if err != nil {
				return err
			}
			targets, err := nutrition.Calculate(profile)
			if err != nil {
				return err
			}
			return write(cmd, targets)
		},
	}
}

// profileFromFlags only sets the fields the user passed so that missing
// flags surface as an incomplete profile.
func profileFromFlags(cmd *cli.Command) nutrition.Profile {
	var p nutrition.Profile
	if cmd.IsSet("weight") {
		v := cmd.Float("weight")
		p.Weight = &v
	}
	if cmd.IsSet("height") {
		v := cmd.Float("height")
		p.Height = &v
	}
	if cmd.IsSet("age") {
		v := int(cmd.Int("age"))
		p.Age = &v
	}
	if cmd.IsSet("gender") {
		v := nutrition.Gender(cmd.String("gender"))
		p.Gender = &v
	}
	if cmd.IsSet("activity") {
		v := nutrition.ActivityLevel(cmd.String("activity"))
		p.ActivityLevel = &v
	}
	if cmd.IsSet("goal") {
		v := nutrition.Goal(cmd.String("goal"))
		p.Goal = &v
	}
	return p
}

func matchCmd() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "Rank catalog recipes against the ingredients you have",
		ArgsUsage: "[ingredient...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "have",
				Aliases: []string{"i"},
				Usage:   "an available ingredient, repeatable",
			},
			catalogFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			catalog, err := loadCatalog(cmd.String("catalog"))
			if err != nil {
				return err
			}
			have := append(cmd.StringSlice("have"), cmd.Args().Slice()...)
			return write(cmd, recipe.Match(catalog, have))
		},
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Validate and print a recipe catalog",
		Flags: []cli.Flag{catalogFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			catalog, err := loadCatalog(cmd.String("catalog"))
			if err != nil {
				return err
			}
			return write(cmd, catalog.All())
		},
	}
}

func loadCatalog(path string) (recipe.Catalog, error) {
	if path == "" {
		return recipe.DefaultCatalog()
	}
	c, err := recipe.LoadCatalogFile(path)
	if err != nil {
		return recipe.Catalog{}, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return c, nil
}

func write(cmd *cli.Command, v any) error {
	out := cmd.Root().Writer
	switch cmd.String("format") {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
}
