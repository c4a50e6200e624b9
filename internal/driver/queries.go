package driver

var IndexQueries = []string{
	"CREATE INDEX ON :User(username);",
	"CREATE INDEX ON :Community(name);",
}

const (
	SaveUserQuery = `
		MERGE (u:User {username: $username})
		SET u.mbti = $mbti,
			u.link_karma = $link_karma,
			u.comment_karma = $comment_karma,
			u.records = $records,
			u.generated_at = $generated_at,
			u.traits = $traits
		RETURN u.username AS username
	`

	// ClearUserActivityQuery drops the user's previous ACTIVE_IN edges so a re-export replaces them.
	ClearUserActivityQuery = `
		MATCH (u:User {username: $username})-[r:ACTIVE_IN]->(:Community)
		DELETE r
	`

	SaveActivityQuery = `
		MATCH (u:User {username: $username})
		MERGE (c:Community {name: $community})
		SET c.title = coalesce($title, c.title),
			c.description = coalesce($description, c.description)
		MERGE (u)-[r:ACTIVE_IN]->(c)
		SET r.rank = $rank,
			r.interactions = $interactions,
			r.dominant = $dominant,
			r.most_common_top = $most_common_top,
			r.sadness = $sadness,
			r.joy = $joy,
			r.love = $love,
			r.anger = $anger,
			r.fear = $fear,
			r.surprise = $surprise
		RETURN c.name AS name
	`

	GetUserCommunitiesQuery = `
		MATCH (u:User {username: $username})-[r:ACTIVE_IN]->(c:Community)
		RETURN c.name AS name, r.interactions AS interactions, r.dominant AS dominant
		ORDER BY r.rank
	`
)
