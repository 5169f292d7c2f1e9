package mtcmd

const (
	// ============================================================================
	// Command Names
	// ============================================================================

	// CmdReset resets the memory manager: MTReset [(size_t blockSize)]
	CmdReset = "MTReset"

	// CmdNew allocates objects or arrays: MTNew <(size_t numObjects)> [-Array (size_t arraySize)]
	CmdNew = "MTNew"

	// CmdDelete frees objects or arrays:
	// MTDelete <-Index (size_t objId) | -Random (size_t numRandId)> [-Array]
	CmdDelete = "MTDelete"

	// CmdPrint prints the memory manager report: MTPrint
	CmdPrint = "MTPrint"

	// CmdHelp lists commands or prints the usage of one: HELp [(string cmd)]
	CmdHelp = "HELp"

	// CmdQuit stops a running script: Quit
	CmdQuit = "Quit"

	// CmdPrefixLen is the mandatory prefix of every MT command name.
	CmdPrefixLen = 3

	// ============================================================================
	// Options
	// ============================================================================

	// OptArray selects the Array List
	OptArray = "-Array"

	// OptIndex deletes one entry by index
	OptIndex = "-Index"

	// OptRandom deletes entries at random indices
	OptRandom = "-Random"

	// OptPrefixLen is the mandatory prefix of every option, dash included.
	OptPrefixLen = 2

	// ============================================================================
	// Script Syntax
	// ============================================================================

	// CommentPrefix marks a comment line
	CommentPrefix = "//"

	// Prompt is echoed before each command when echo is enabled
	Prompt = "mtest> "
)
