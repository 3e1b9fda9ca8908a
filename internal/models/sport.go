package models

// SportFootball is the sport id stamped on every synced row. The pipeline
// only ingests association football, but the schema is keyed for more.
const SportFootball = 1
