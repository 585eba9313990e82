// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package menu is the interactive front end.

	1 -> Download vw_AllSurveyData
	2 -> Update vw_AllSurveyData
	3 -> Run custom SELECT query
	4 -> Exit

Save paths are checked before any query runs. Rejected queries are explained
and re-prompted. An error inside an action is printed with an apology and the
menu comes back; connection failures add configuration guidance.

Prompts go through the Prompter interface. HuhPrompter renders them with
charmbracelet/huh; tests script answers instead.
*/
package menu
