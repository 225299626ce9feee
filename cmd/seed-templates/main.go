// Command seed-templates inserts the fixed evaluation rubric: five
// categories of four subfields each. Idempotent; existing rows are left
// untouched. The same data ships as a goose migration, this command
// covers databases whose schema is managed externally.
//
// Usage:
//
//	seed-templates
//
// Requires DATABASE_DSN environment variable to be set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type category struct {
	name      string
	subfields [4]string
}

var rubric = []category{
	{
		name: "QUALITY OF WORK",
		subfields: [4]string{
			"Competency in performing assigned tasks",
			"Respect of established standards",
			"Respect of time allowed (deadline)",
			"Respect of organization and engagement",
		},
	},
	{
		name: "JOB KNOWLEDGE/TECHNICAL SKILLS",
		subfields: [4]string{
			"Demonstration of skills required to perform assigned tasks",
			"Ability to use tools, materials and equipment effectively",
			"Ability to use computer and related technologies effectively",
			"Respect of established standard and operating procedure (i.e. ethics and safety protocols)",
		},
	},
	{
		name: "COMMUNICATION & INTERPERSONAL SKILLS",
		subfields: [4]string{
			"Ability to communicate effectively",
			"Ability to listen and understand others (i.e. colleagues, customers, partners and superiors)",
			"Ability to work in a team to perform tasks effectively",
			"Demonstration of mutual respect towards colleagues",
		},
	},
	{
		name: "INITIATIVE/LEADERSHIP QUALITIES",
		subfields: [4]string{
			"Demonstration of commitment to the job",
			"Initiative and motivation",
			"Ability to think analytically",
			"Ability to generate creative solutions to problems",
		},
	},
	{
		name: "PERSONAL DEVELOPMENT/LEARNING",
		subfields: [4]string{
			"Ability to adapt to changing dynamics in the working environment",
			"Disposition to learn new skills and knowledge",
			"Ability to receive feedback",
			"Endeavor to pursue opportunities for professional growth",
		},
	},
}

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	inserted := 0
	for ord, cat := range rubric {
		tag, err := pool.Exec(ctx,
			"INSERT INTO evaluation_templates (name, ord) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
			cat.name, ord+1,
		)
		if err != nil {
			log.Fatalf("seed template %q: %v", cat.name, err)
		}
		inserted += int(tag.RowsAffected())

		for subOrd, sub := range cat.subfields {
			tag, err := pool.Exec(ctx,
				`INSERT INTO evaluation_subfield_templates (template_id, name, ord)
				 SELECT id, $2, $3 FROM evaluation_templates WHERE name = $1
				 ON CONFLICT (template_id, ord) DO NOTHING`,
				cat.name, sub, subOrd+1,
			)
			if err != nil {
				log.Fatalf("seed subfield %q: %v", sub, err)
			}
			inserted += int(tag.RowsAffected())
		}
	}

	fmt.Printf("Seeded %d evaluation template rows.\n", inserted)
}
