package consts

const (
	// DefaultDBName is the default database name.
	DefaultDBName = "sage"

	// TableNameRecords is the default table/collection name for corpus records.
	TableNameRecords = "knowledge_records"

	// RedisKeyCorpus is the Redis list holding the serialized corpus.
	RedisKeyCorpus = "corpus:records"

	// Column/field names
	ColRecordID  = "record_id"
	ColTopic     = "topic"
	ColText      = "text"
	ColEmbedding = "embedding"
	ColSeq       = "seq"

	// Neo4j specific
	LabelEntry = "KnowledgeEntry"
)
