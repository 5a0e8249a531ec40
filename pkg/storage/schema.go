package storage

// UnavailableValue replaces an unavailable numeric reading when
// db.unavailable-as-null is false. Loads and sizes are never negative.
const UnavailableValue = -1.0

// InsertMeasurement writes one full sample as a single row.
const InsertMeasurement = `INSERT INTO Measurement (processorload, total_diskspace_in_GB, used_diskspace_in_GB, date, Infrastructure_component_id, uptime) VALUES (?, ?, ?, ?, ?, ?)`

// Schema is the table layout the daemon writes into. The daemon never runs DDL;
// the central database is provisioned separately.
const Schema = `
CREATE TABLE IF NOT EXISTS Measurement (
    id                          INTEGER PRIMARY KEY AUTOINCREMENT,
    processorload               REAL,
    total_diskspace_in_GB       REAL,
    used_diskspace_in_GB        REAL,
    date                        DATETIME NOT NULL,
    Infrastructure_component_id TEXT NOT NULL,
    uptime                      TEXT
);
`
