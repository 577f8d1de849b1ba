package convert

// Paired fixtures: each source text converts to its literate text and back.

const oneTextLineSource = "//@ This is a demo without code.\n"
const oneTextLineLiterate = "This is a demo without code.\n"

const oneCodeLineSource = "fn main() { println!(\"hi\"); }\n"
const oneCodeLineLiterate = "```rust\nfn main() { println!(\"hi\"); }\n```\n"

const helloSource = `//@ # Hello World
//@ This is a Hello World demo.

// Code started here (at this normal comment)
fn main() { println!("Hello World"); }
//@ And then the text resumes here.
`

const helloLiterate = "# Hello World\n" +
	"This is a Hello World demo.\n" +
	"\n" +
	"```rust\n" +
	"// Code started here (at this normal comment)\n" +
	"fn main() { println!(\"Hello World\"); }\n" +
	"```\n" +
	"And then the text resumes here.\n"

const hello2Source = `//@ # Hello World
//@ This is a second Hello World demo.

// Code started here (at this normal comment)
fn main() { println!("Hello World"); }

//@ And then the text resumes here, after a line break.
`

const hello2Literate = "# Hello World\n" +
	"This is a second Hello World demo.\n" +
	"\n" +
	"```rust\n" +
	"// Code started here (at this normal comment)\n" +
	"fn main() { println!(\"Hello World\"); }\n" +
	"```\n" +
	"\n" +
	"And then the text resumes here, after a line break.\n"

const hello3Source = `

// Code started here (at this normal comment)
fn main() { hello() }

//@ Here is some expository text in the middle
//@ It spans ...
//@ ... multiple lines

// Here is yet more code!
// (and we end with code, not doc)
fn hello() { println!("Hello World"); }
`

const hello3Literate = "\n" +
	"\n" +
	"```rust\n" +
	"// Code started here (at this normal comment)\n" +
	"fn main() { hello() }\n" +
	"```\n" +
	"\n" +
	"Here is some expository text in the middle\n" +
	"It spans ...\n" +
	"... multiple lines\n" +
	"\n" +
	"```rust\n" +
	"// Here is yet more code!\n" +
	"// (and we end with code, not doc)\n" +
	"fn hello() { println!(\"Hello World\"); }\n" +
	"```\n"

const hello4Source = `//@ # Hello World
//@ Here is some expository text, but this one ...
//@
//@ ... has a gap between its lines.
`

const hello4Literate = `# Hello World
Here is some expository text, but this one ...

... has a gap between its lines.
`

const metadataSource = `//@ # Hello World

//@@ { .css_class_metadata }
// The question is, can we preserve the .css_class_metdata
`

const metadataLiterate = "# Hello World\n" +
	"\n" +
	"```rust { .css_class_metadata }\n" +
	"// The question is, can we preserve the .css_class_metdata\n" +
	"```\n"

// A whitespace-only prose line is not blank in markdown but reads back as one.
const tabLineLiterate = "# Hello World\n" +
	"```rust\n" +
	"let code_fragment;\n" +
	"```\n" +
	"\t\n" +
	"This looks like it has a nice para break before its starts,\n" +
	"but note the tab\n"

const tabLineSource = "//@ # Hello World\n" +
	"let code_fragment;\n" +
	"//@ \t\n" +
	"//@ This looks like it has a nice para break before its starts,\n" +
	"//@ but note the tab\n"

const tabLineReturned = "# Hello World\n" +
	"```rust\n" +
	"let code_fragment;\n" +
	"```\n" +
	"\n" +
	"This looks like it has a nice para break before its starts,\n" +
	"but note the tab\n"

type snippetPair struct {
	name     string
	source   string
	literate string
}

var snippetPairs = []snippetPair{
	{"one_text_line", oneTextLineSource, oneTextLineLiterate},
	{"one_code_line", oneCodeLineSource, oneCodeLineLiterate},
	{"hello", helloSource, helloLiterate},
	{"hello2", hello2Source, hello2Literate},
	{"hello3", hello3Source, hello3Literate},
	{"hello4", hello4Source, hello4Literate},
	{"metadata", metadataSource, metadataLiterate},
}
