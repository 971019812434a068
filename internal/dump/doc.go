// Package dump reads whole mpack log files and renders them through
// pluggable printers (JSON Lines, CSV, field listings). Fields address
// values in nested records with slash-separated key paths such as
// "observation/imu/0".
package dump
