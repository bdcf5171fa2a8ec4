package main

import "bookreview/internal/book"

var demoUsers = []string{"alice", "bob", "carol", "dave"}

var comments = []string{
	"",
	"Could not put it down.",
	"Slow start, strong finish.",
	"Not for me.",
	"Worth a reread.",
}

func ptr[T any](v T) *T { return &v }

var demoBooks = []book.Input{
	{
		Title:         "Dune",
		Author:        "Frank Herbert",
		Description:   "A desert planet, a noble house and the spice that holds an empire together.",
		PublishedYear: ptr(1965),
		ISBN:          ptr("9780441013593"),
		Genre:         []string{"scifi", "classic"},
	},
	{
		Title:         "Emma",
		Author:        "Jane Austen",
		Description:   "A young matchmaker misreads nearly everyone in her village.",
		PublishedYear: ptr(1815),
		ISBN:          ptr("9780141439587"),
		Genre:         []string{"romance", "classic"},
	},
	{
		Title:         "Neuromancer",
		Author:        "William Gibson",
		Description:   "A washed-up hacker is hired for one last job.",
		PublishedYear: ptr(1984),
		ISBN:          ptr("9780441569595"),
		Genre:         []string{"scifi", "cyberpunk"},
	},
	{
		Title:         "The Hobbit",
		Author:        "J.R.R. Tolkien",
		Description:   "Bilbo Baggins is swept into a quest for dragon-guarded treasure.",
		PublishedYear: ptr(1937),
		ISBN:          ptr("9780547928227"),
		Genre:         []string{"fantasy", "classic"},
	},
	{
		Title:         "Beloved",
		Author:        "Toni Morrison",
		Description:   "A formerly enslaved woman is haunted by the past in post-war Ohio.",
		PublishedYear: ptr(1987),
		ISBN:          ptr("9781400033416"),
		Genre:         []string{"literary"},
	},
	{
		Title:         "Mort",
		Author:        "Terry Pratchett",
		Description:   "Death takes on an apprentice, with predictable results.",
		PublishedYear: ptr(1987),
		ISBN:          ptr("9780062225719"),
		Genre:         []string{"fantasy", "humor"},
	},
}
