// Package lesson fetches pronunciation recordings from
// howtostudykorean.com and builds each lesson's manifest.
//
// Lesson 1 is scraped from the live page, where every anchor wrapping a
// jamo links to its recording. Lessons 2 and 3 publish no usable table
// markup, so their recordings are declared statically from the known
// upload paths. Re-scraping preserves segmentation state already stored
// in the manifest.
package lesson
