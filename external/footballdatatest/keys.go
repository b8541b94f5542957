package footballdatatest

import "fmt"

// Key* helpers build the call keys Stub uses for SetResponse/SetError,
// exported so tests can script responses without duplicating the format.

func keyFixture(fixtureID int) string {
	return fmt.Sprintf("fixture:%d", fixtureID)
}

func keyPredictions(fixtureID int) string {
	return fmt.Sprintf("predictions:%d", fixtureID)
}

func keyH2H(teamA, teamB int) string {
	return fmt.Sprintf("h2h:%d-%d", teamA, teamB)
}

func keyDetail(kind string, fixtureID int) string {
	return fmt.Sprintf("%s:%d", kind, fixtureID)
}

func keyLeague(kind string, leagueID, season int) string {
	return fmt.Sprintf("%s:%d:%d", kind, leagueID, season)
}

func keyTeam(kind string, teamID, season, leagueID int) string {
	return fmt.Sprintf("%s:%d:%d:%d", kind, teamID, season, leagueID)
}

func keySidelined(teamID int) string {
	return fmt.Sprintf("sidelined:%d", teamID)
}

// KeyFixture etc. re-export the key builders for external test packages.
func KeyFixture(fixtureID int) string                      { return keyFixture(fixtureID) }
func KeyPredictions(fixtureID int) string                  { return keyPredictions(fixtureID) }
func KeyH2H(teamA, teamB int) string                       { return keyH2H(teamA, teamB) }
func KeyDetail(kind string, fixtureID int) string          { return keyDetail(kind, fixtureID) }
func KeyLeague(kind string, leagueID, season int) string   { return keyLeague(kind, leagueID, season) }
func KeyTeam(kind string, teamID, season, leagueID int) string {
	return keyTeam(kind, teamID, season, leagueID)
}
func KeySidelined(teamID int) string { return keySidelined(teamID) }
