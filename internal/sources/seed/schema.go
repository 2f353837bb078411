package seed

// File is the top-level structure of a seed file:
//
//	entries:
//	  - title: Welcome
//	    icon: star
//	    content: |
//	      <p>First note</p>
type File struct {
	Entries []EntryProps `yaml:"entries"`
}

// EntryProps describes one entry to create. Title may be empty; the
// server then derives it from the creation time.
type EntryProps struct {
	Title   string `yaml:"title,omitempty"`
	Icon    string `yaml:"icon,omitempty"`
	Content string `yaml:"content"`
}
