package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Games table: one row per game, status follows the snapshot
			CREATE TABLE games (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				join_code TEXT UNIQUE,
				status TEXT NOT NULL DEFAULT 'setup',
				player_count INTEGER NOT NULL,
				board_size TEXT NOT NULL,
				rules_json TEXT NOT NULL,
				winner INTEGER,
				victory TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME
			);
			CREATE INDEX idx_games_join_code ON games(join_code);
			CREATE INDEX idx_games_status ON games(status);

			-- Game state: latest snapshot per game
			CREATE TABLE game_state (
				game_id TEXT PRIMARY KEY,
				state_json TEXT NOT NULL,
				version INTEGER NOT NULL,
				current_player INTEGER NOT NULL,
				turn INTEGER NOT NULL,
				phase TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);

			-- Game actions: every accepted or rejected action
			CREATE TABLE game_actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				player_id INTEGER NOT NULL,
				action_type TEXT NOT NULL,
				action_json TEXT NOT NULL,
				result TEXT NOT NULL,
				version INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_game_actions_game ON game_actions(game_id);
		`,
	},
	{
		id:   2,
		name: "game_history",
		sql: `
			-- Game history: one event per snapshot version
			CREATE TABLE game_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				version INTEGER NOT NULL,
				turn INTEGER NOT NULL,
				phase TEXT NOT NULL,
				player_id INTEGER NOT NULL,
				event_type TEXT NOT NULL,
				message TEXT NOT NULL,
				details_json TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
				UNIQUE (game_id, version)
			);
			CREATE INDEX idx_game_history_game ON game_history(game_id);
		`,
	},
}
